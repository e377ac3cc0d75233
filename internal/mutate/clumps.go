package mutate

import (
	"fmt"
	"log/slog"
	"strings"

	"dataflow-cli/internal/grid"
	"dataflow-cli/internal/logging"
	"dataflow-cli/internal/model"
	"dataflow-cli/internal/store"
)

func mutateLog() *slog.Logger { return logging.ForComponent(logging.CompMutate) }

type AddClumpResult struct {
	Clump        *model.Clump
	EventPayload map[string]any
}

type EditClumpResult struct {
	Clump        *model.Clump
	Changed      bool
	EventPayload map[string]any
}

type DeleteClumpResult struct {
	ID int
	// Promoted is the clump that took over the deleted clump's link, or 0.
	Promoted     int
	EventPayload map[string]any
}

// ClumpEdit lists the fields to change; nil fields are left alone.
type ClumpEdit struct {
	Name *string
	Code *string
	Link *model.Link
}

// ColumnLink resolves "put it at the bottom of column col" into an above-link.
func ColumnLink(db *store.DB, col int) (model.Link, error) {
	l, err := db.Layout()
	if err != nil {
		return model.Link{}, err
	}
	if col < 1 || col > l.Grid.Columns() {
		return model.Link{}, NotFoundError{Kind: "column", ID: col}
	}
	parent, ok := l.Grid.ColumnParent(col)
	if !ok {
		return model.Link{}, NotFoundError{Kind: "column", ID: col}
	}
	return model.Below(parent), nil
}

// commit validates next by building its layout and only then swaps it into db.
func commit(db *store.DB, next []model.Clump, highest int) error {
	g, idx, err := grid.Build(next)
	if err != nil {
		return err
	}
	db.Replace(next, highest, store.Layout{Grid: g, Columns: idx})
	return nil
}

// AddClump appends a new clump with the next free id.
// Callers are responsible for saving db and appending the clump.add event.
func AddClump(db *store.DB, name, code string, link model.Link) (AddClumpResult, error) {
	if db == nil {
		return AddClumpResult{}, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return AddClumpResult{}, fmt.Errorf("clump name is empty")
	}
	c := model.Clump{ID: db.NextClumpID(), Name: name, Code: code, Link: link}
	next, err := Reconcile(db.Clumps, c, nil)
	if err != nil {
		return AddClumpResult{}, err
	}
	if err := commit(db, next, max(db.HighestID, c.ID)); err != nil {
		return AddClumpResult{}, err
	}
	added, _ := db.FindClump(c.ID)
	mutateLog().Debug("added clump", "id", c.ID, "link", link.String())
	return AddClumpResult{
		Clump: added,
		EventPayload: map[string]any{
			"name": added.Name,
			"link": added.Link.String(),
		},
	}, nil
}

// EditClump applies e to clump id. A link change moves the clump and its
// dependents; a name/code change only rewrites it in place.
// Callers are responsible for saving db and appending the clump.edit event.
func EditClump(db *store.DB, id int, e ClumpEdit) (EditClumpResult, error) {
	if db == nil {
		return EditClumpResult{}, nil
	}
	orig, ok := db.FindClump(id)
	if !ok {
		return EditClumpResult{}, NotFoundError{Kind: "clump", ID: id}
	}
	prev := *orig
	upd := prev
	payload := map[string]any{}
	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		if name == "" {
			return EditClumpResult{}, fmt.Errorf("clump name is empty")
		}
		if name != prev.Name {
			upd.Name = name
			payload["name"] = name
		}
	}
	if e.Code != nil && *e.Code != prev.Code {
		upd.Code = *e.Code
		payload["code"] = upd.Code
	}
	if e.Link != nil && *e.Link != prev.Link {
		upd.Link = *e.Link
		payload["link"] = upd.Link.String()
		payload["from"] = prev.Link.String()
	}
	if upd == prev {
		return EditClumpResult{Clump: orig, Changed: false}, nil
	}

	next, err := Reconcile(db.Clumps, upd, &prev)
	if err != nil {
		return EditClumpResult{}, err
	}
	if err := commit(db, next, db.HighestID); err != nil {
		return EditClumpResult{}, err
	}
	edited, _ := db.FindClump(id)
	mutateLog().Debug("edited clump", "id", id, "fields", len(payload))
	return EditClumpResult{Clump: edited, Changed: true, EventPayload: payload}, nil
}

// CanDelete reports why id cannot be deleted, or nil when it can.
func CanDelete(db *store.DB, id int) error {
	c, ok := db.FindClump(id)
	if !ok {
		return NotFoundError{Kind: "clump", ID: id}
	}
	if c.Link.IsRoot() {
		return ErrRootDelete
	}
	if r := grid.RightNeighbor(db.Clumps, id); r != 0 {
		return fmt.Errorf("%w: %d sits right of %d", ErrHasRightNeighbor, r, id)
	}
	return nil
}

// DeleteClump removes id. Clumps with something linked to their right are
// refused so no link is left pointing at a missing clump.
// Callers are responsible for saving db and appending the clump.delete event.
func DeleteClump(db *store.DB, id int) (DeleteClumpResult, error) {
	if db == nil {
		return DeleteClumpResult{}, nil
	}
	if err := CanDelete(db, id); err != nil {
		return DeleteClumpResult{}, err
	}
	promoted := grid.DirectlyBelow(db.Clumps, id)
	gone, _ := db.FindClump(id)
	payload := map[string]any{"name": gone.Name, "link": gone.Link.String()}

	next, highest, err := Delete(db.Clumps, id)
	if err != nil {
		return DeleteClumpResult{}, err
	}
	if err := commit(db, next, highest); err != nil {
		return DeleteClumpResult{}, err
	}
	if promoted != 0 {
		payload["promoted"] = promoted
	}
	mutateLog().Debug("deleted clump", "id", id, "promoted", promoted, "highestId", highest)
	return DeleteClumpResult{ID: id, Promoted: promoted, EventPayload: payload}, nil
}
