package cli

import (
        "dataflow-cli/internal/grid"
        "dataflow-cli/internal/model"
        "dataflow-cli/internal/mutate"
        "dataflow-cli/internal/store"

        "github.com/MakeNowJust/heredoc/v2"
        "github.com/spf13/cobra"
)

// linkFlags are the mutually exclusive ways to say where a clump goes.
type linkFlags struct {
        left   int
        above  int
        column int
}

func (f *linkFlags) register(cmd *cobra.Command) {
        cmd.Flags().IntVar(&f.left, "left", 0, "Place right of this clump id")
        cmd.Flags().IntVar(&f.above, "above", 0, "Place below this clump id")
        cmd.Flags().IntVar(&f.column, "column", 0, "Place at the bottom of this column")
        cmd.MarkFlagsMutuallyExclusive("left", "above", "column")
}

// resolve returns the requested link, or ok=false when no flag was given.
func (f *linkFlags) resolve(db *store.DB) (model.Link, bool, error) {
        switch {
        case f.left != 0:
                if f.left < 1 {
                        return model.Link{}, false, errUsage("invalid --left: %d", f.left)
                }
                return model.LeftOf(f.left), true, nil
        case f.above != 0:
                if f.above < 1 {
                        return model.Link{}, false, errUsage("invalid --above: %d", f.above)
                }
                return model.Below(f.above), true, nil
        case f.column != 0:
                l, err := mutate.ColumnLink(db, f.column)
                if err != nil {
                        return model.Link{}, false, err
                }
                return l, true, nil
        }
        return model.Link{}, false, nil
}

func newAddCmd(app *App) *cobra.Command {
        var name, code string
        var lf linkFlags

        cmd := &cobra.Command{
                Use:   "add",
                Short: "Add a clump",
                Long: heredoc.Doc(`
                        Add a clump. The first clump of a workspace becomes the root and
                        takes no link; every later clump needs exactly one of --left,
                        --above or --column.
                `),
                Args: cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        db, s, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        link, ok, err := lf.resolve(db)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if !ok {
                                if len(db.Clumps) > 0 {
                                        return writeErr(cmd, errLinkRequired)
                                }
                                link = model.Root()
                        }

                        res, err := mutate.AddClump(db, name, code, link)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := saveWithEvent(cmd.Context(), s, db, "clump.add", res.Clump.ID, res.EventPayload); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": res.Clump})
                },
        }
        cmd.Flags().StringVar(&name, "name", "", "Clump name")
        cmd.Flags().StringVar(&code, "code", "", "Clump code")
        lf.register(cmd)
        _ = cmd.MarkFlagRequired("name")
        return cmd
}

func newEditCmd(app *App) *cobra.Command {
        var name, code string
        var lf linkFlags

        cmd := &cobra.Command{
                Use:   "edit <clump-id>",
                Short: "Rename, recode or relink a clump",
                Long: heredoc.Doc(`
                        Edit a clump. Relinking moves the clump together with everything
                        that hangs off it.
                `),
                Args: cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id, err := parseClumpID(args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        db, s, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }

                        var e mutate.ClumpEdit
                        if cmd.Flags().Changed("name") {
                                e.Name = &name
                        }
                        if cmd.Flags().Changed("code") {
                                e.Code = &code
                        }
                        link, ok, err := lf.resolve(db)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if ok {
                                e.Link = &link
                        }

                        res, err := mutate.EditClump(db, id, e)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if res.Changed {
                                if err := saveWithEvent(cmd.Context(), s, db, "clump.edit", id, res.EventPayload); err != nil {
                                        return writeErr(cmd, err)
                                }
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": res.Clump,
                                "meta": map[string]any{"changed": res.Changed},
                        })
                },
        }
        cmd.Flags().StringVar(&name, "name", "", "New name")
        cmd.Flags().StringVar(&code, "code", "", "New code")
        lf.register(cmd)
        return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "delete <clump-id>",
                Short: "Delete a clump",
                Long: heredoc.Doc(`
                        Delete a clump. A clump hanging below it moves up to take its
                        place. The root and clumps with something to their right cannot
                        be deleted.
                `),
                Args: cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id, err := parseClumpID(args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        db, s, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        res, err := mutate.DeleteClump(db, id)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := saveWithEvent(cmd.Context(), s, db, "clump.delete", id, res.EventPayload); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": map[string]any{
                                        "id":        res.ID,
                                        "promoted":  res.Promoted,
                                        "highestId": db.HighestID,
                                },
                        })
                },
        }
        return cmd
}

func newListCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "list",
                Short: "List clumps in placement order",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        db, _, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": db.Clumps,
                                "meta": map[string]any{"highestId": db.HighestID, "count": len(db.Clumps)},
                        })
                },
        }
}

func newShowCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "show <clump-id>",
                Short: "Show a clump with its position and neighbours",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id, err := parseClumpID(args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        db, _, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        c, ok := db.FindClump(id)
                        if !ok {
                                return writeErr(cmd, mutate.NotFoundError{Kind: "clump", ID: id})
                        }
                        l, err := db.Layout()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        row, col, _ := l.Grid.Find(id)
                        out := map[string]any{
                                "clump":     c,
                                "row":       row,
                                "column":    col,
                                "below":     grid.IDsBelow(db.Clumps, id),
                                "tail":      grid.FullTail(db.Clumps, id),
                                "right":     grid.RightNeighbor(db.Clumps, id),
                                "canDelete": true,
                        }
                        if err := mutate.CanDelete(db, id); err != nil {
                                out["canDelete"] = false
                                out["deleteBlockedBy"] = err.Error()
                        }
                        return writeOut(cmd, app, map[string]any{"data": out})
                },
        }
}
