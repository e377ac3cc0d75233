package store

import (
        "bytes"
        "encoding/json"
        "errors"
        "fmt"

        "dataflow-cli/internal/model"
)

// Schema identifies the on-disk clump record layout a file was written with.
type Schema int

const (
        SchemaCurrent Schema = iota
        // SchemaV2 used name/code with nullable linkLeft/linkAbove.
        SchemaV2
        // SchemaV1 used clumpName/clumpCode and 0 for "no link".
        SchemaV1
)

func (s Schema) String() string {
        switch s {
        case SchemaV1:
                return "v1"
        case SchemaV2:
                return "v2"
        default:
                return "current"
        }
}

// record is one decoded clump in whichever layout it was stored.
type record interface {
        schema() Schema
        clump() (model.Clump, error)
}

type legacyV1Record struct {
        ID            int    `json:"id"`
        ClumpName     string `json:"clumpName"`
        ClumpCode     string `json:"clumpCode"`
        LinkedToLeft  int    `json:"linkedToLeft"`
        LinkedToAbove int    `json:"linkedToAbove"`
}

func (r legacyV1Record) schema() Schema { return SchemaV1 }

func (r legacyV1Record) clump() (model.Clump, error) {
        link, err := model.LinkFromFields(r.LinkedToLeft, r.LinkedToAbove)
        if err != nil {
                return model.Clump{}, fmt.Errorf("clump %d: %w", r.ID, err)
        }
        return model.Clump{ID: r.ID, Name: r.ClumpName, Code: r.ClumpCode, Link: link}, nil
}

type legacyV2Record struct {
        ID        int    `json:"id"`
        Name      string `json:"name"`
        Code      string `json:"code"`
        LinkLeft  *int   `json:"linkLeft"`
        LinkAbove *int   `json:"linkAbove"`
}

func (r legacyV2Record) schema() Schema { return SchemaV2 }

func (r legacyV2Record) clump() (model.Clump, error) {
        left, above := model.NoLink, model.NoLink
        if r.LinkLeft != nil {
                left = *r.LinkLeft
        }
        if r.LinkAbove != nil {
                above = *r.LinkAbove
        }
        link, err := model.LinkFromFields(left, above)
        if err != nil {
                return model.Clump{}, fmt.Errorf("clump %d: %w", r.ID, err)
        }
        return model.Clump{ID: r.ID, Name: r.Name, Code: r.Code, Link: link}, nil
}

type currentRecord struct {
        c model.Clump
}

func (r currentRecord) schema() Schema              { return SchemaCurrent }
func (r currentRecord) clump() (model.Clump, error) { return r.c, nil }

func decodeRecord(raw json.RawMessage) (record, error) {
        var keys map[string]json.RawMessage
        if err := json.Unmarshal(raw, &keys); err != nil {
                return nil, err
        }
        has := func(names ...string) bool {
                for _, n := range names {
                        if _, ok := keys[n]; ok {
                                return true
                        }
                }
                return false
        }
        switch {
        case has("clumpName", "clumpCode"):
                var r legacyV1Record
                if err := json.Unmarshal(raw, &r); err != nil {
                        return nil, err
                }
                return r, nil
        case has("linkLeft", "linkAbove"):
                var r legacyV2Record
                if err := json.Unmarshal(raw, &r); err != nil {
                        return nil, err
                }
                return r, nil
        default:
                var c model.Clump
                if err := json.Unmarshal(raw, &c); err != nil {
                        return nil, err
                }
                return currentRecord{c: c}, nil
        }
}

// DecodeClumps decodes a JSON array of clump records, converting any legacy
// layout to the current one. The returned Schema is the oldest one seen.
func DecodeClumps(raw []byte) ([]model.Clump, Schema, error) {
        var items []json.RawMessage
        if err := json.Unmarshal(raw, &items); err != nil {
                return nil, SchemaCurrent, err
        }
        out := make([]model.Clump, 0, len(items))
        oldest := SchemaCurrent
        for i, it := range items {
                r, err := decodeRecord(it)
                if err != nil {
                        return nil, SchemaCurrent, fmt.Errorf("record %d: %w", i, err)
                }
                c, err := r.clump()
                if err != nil {
                        return nil, SchemaCurrent, err
                }
                if c.ID < 1 {
                        return nil, SchemaCurrent, fmt.Errorf("record %d: invalid id %d", i, c.ID)
                }
                oldest = max(oldest, r.schema())
                out = append(out, c)
        }
        return out, oldest, nil
}

type importedFile struct {
        Clumps    []model.Clump
        HighestID int
        Schema    Schema
}

// decodeLegacyFile accepts either a bare array of records or an object with a
// "clumps" array and an optional "highestId" (older files: "lastId").
func decodeLegacyFile(b []byte) (importedFile, error) {
        b = bytes.TrimSpace(b)
        if len(b) == 0 {
                return importedFile{}, errors.New("empty file")
        }
        var (
                list    json.RawMessage
                highest int
        )
        if b[0] == '[' {
                list = b
        } else {
                var obj struct {
                        Clumps    json.RawMessage `json:"clumps"`
                        HighestID *int            `json:"highestId"`
                        LastID    *int            `json:"lastId"`
                }
                if err := json.Unmarshal(b, &obj); err != nil {
                        return importedFile{}, err
                }
                if len(obj.Clumps) == 0 {
                        return importedFile{}, errors.New("missing clumps")
                }
                list = obj.Clumps
                switch {
                case obj.HighestID != nil:
                        highest = *obj.HighestID
                case obj.LastID != nil:
                        highest = *obj.LastID
                }
        }
        clumps, schema, err := DecodeClumps(list)
        if err != nil {
                return importedFile{}, err
        }
        return importedFile{
                Clumps:    clumps,
                HighestID: max(highest, MaxClumpID(clumps)),
                Schema:    schema,
        }, nil
}
