package model

import (
        "encoding/json"
        "errors"
        "fmt"
        "time"
)

// NoLink is the wire value of an unset link field.
const NoLink = -1

type LinkKind int

const (
        LinkRoot LinkKind = iota
        LinkLeft
        LinkAbove
)

func (k LinkKind) String() string {
        switch k {
        case LinkRoot:
                return "root"
        case LinkLeft:
                return "left"
        case LinkAbove:
                return "above"
        default:
                return fmt.Sprintf("LinkKind(%d)", int(k))
        }
}

// Link says where a clump attaches. A left link places the clump immediately
// to the right of Parent (same row); an above link places it directly beneath
// Parent (same column). Root clumps have no parent.
type Link struct {
        Kind   LinkKind `json:"kind"`
        Parent int      `json:"parent,omitempty"`
}

func Root() Link { return Link{Kind: LinkRoot} }

func LeftOf(parent int) Link { return Link{Kind: LinkLeft, Parent: parent} }

func Below(parent int) Link { return Link{Kind: LinkAbove, Parent: parent} }

func (l Link) IsRoot() bool { return l.Kind == LinkRoot }

func (l Link) String() string {
        switch l.Kind {
        case LinkLeft:
                return fmt.Sprintf("left:%d", l.Parent)
        case LinkAbove:
                return fmt.Sprintf("above:%d", l.Parent)
        default:
                return "root"
        }
}

var ErrBothLinks = errors.New("clump links both left and above")

// LinkFromFields converts the two wire fields into a Link. Values < 1 mean unset.
func LinkFromFields(left, above int) (Link, error) {
        switch {
        case left >= 1 && above >= 1:
                return Link{}, ErrBothLinks
        case left >= 1:
                return LeftOf(left), nil
        case above >= 1:
                return Below(above), nil
        default:
                return Root(), nil
        }
}

type Clump struct {
        ID   int
        Name string
        Code string
        Link Link
}

// LinkedToLeft returns the id this clump sits to the right of, or NoLink.
func (c Clump) LinkedToLeft() int {
        if c.Link.Kind == LinkLeft {
                return c.Link.Parent
        }
        return NoLink
}

// LinkedToAbove returns the id this clump sits beneath, or NoLink.
func (c Clump) LinkedToAbove() int {
        if c.Link.Kind == LinkAbove {
                return c.Link.Parent
        }
        return NoLink
}

type clumpWire struct {
        ID            int    `json:"id"`
        Name          string `json:"name"`
        Code          string `json:"code"`
        LinkedToLeft  int    `json:"linkedToLeft"`
        LinkedToAbove int    `json:"linkedToAbove"`
}

func (c Clump) MarshalJSON() ([]byte, error) {
        return json.Marshal(clumpWire{
                ID:            c.ID,
                Name:          c.Name,
                Code:          c.Code,
                LinkedToLeft:  c.LinkedToLeft(),
                LinkedToAbove: c.LinkedToAbove(),
        })
}

func (c *Clump) UnmarshalJSON(b []byte) error {
        w := clumpWire{LinkedToLeft: NoLink, LinkedToAbove: NoLink}
        if err := json.Unmarshal(b, &w); err != nil {
                return err
        }
        link, err := LinkFromFields(w.LinkedToLeft, w.LinkedToAbove)
        if err != nil {
                return fmt.Errorf("clump %d: %w", w.ID, err)
        }
        *c = Clump{ID: w.ID, Name: w.Name, Code: w.Code, Link: link}
        return nil
}

// MarshalYAML keeps the YAML export in the same flat shape as JSON.
func (c Clump) MarshalYAML() (any, error) {
        return clumpYAML{
                ID:            c.ID,
                Name:          c.Name,
                Code:          c.Code,
                LinkedToLeft:  c.LinkedToLeft(),
                LinkedToAbove: c.LinkedToAbove(),
        }, nil
}

type clumpYAML struct {
        ID            int    `yaml:"id"`
        Name          string `yaml:"name"`
        Code          string `yaml:"code"`
        LinkedToLeft  int    `yaml:"linkedToLeft"`
        LinkedToAbove int    `yaml:"linkedToAbove"`
}

type Event struct {
        ID      string    `json:"id"`
        TS      time.Time `json:"ts"`
        Type    string    `json:"type"`
        ClumpID int       `json:"clumpId"`
        Payload any       `json:"payload"`
}
