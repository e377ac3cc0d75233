package store

import (
        "os"
        "path/filepath"
        "strings"
        "testing"

        "dataflow-cli/internal/model"
)

func TestExport_RoundTrip(t *testing.T) {
        for _, name := range []string{"out.json", "out.yaml", "out.yml"} {
                t.Run(name, func(t *testing.T) {
                        path := filepath.Join(t.TempDir(), name)
                        clumps := sampleClumps()
                        clumps[1].Code = "line one\nline two"
                        if err := WriteExport(path, clumps, 9); err != nil {
                                t.Fatalf("write: %v", err)
                        }
                        got, err := ReadExport(path)
                        if err != nil {
                                t.Fatalf("read: %v", err)
                        }
                        if got.HighestID != 9 || got.Schema != SchemaCurrent {
                                t.Fatalf("unexpected export meta: %+v", got)
                        }
                        if len(got.Clumps) != len(clumps) {
                                t.Fatalf("expected %d clumps, got %+v", len(clumps), got.Clumps)
                        }
                        for i := range clumps {
                                if got.Clumps[i] != clumps[i] {
                                        t.Fatalf("clump %d: expected %+v, got %+v", i, clumps[i], got.Clumps[i])
                                }
                        }
                })
        }
}

func TestExport_YAMLUsesFlatLinkFields(t *testing.T) {
        path := filepath.Join(t.TempDir(), "out.yaml")
        if err := WriteExport(path, sampleClumps(), 3); err != nil {
                t.Fatalf("write: %v", err)
        }
        b, err := os.ReadFile(path)
        if err != nil {
                t.Fatalf("read: %v", err)
        }
        s := string(b)
        if !strings.Contains(s, "linkedToLeft: 2") || !strings.Contains(s, "linkedToAbove: -1") {
                t.Fatalf("expected flat link fields in yaml, got:\n%s", s)
        }
}

func TestReadExport_LegacyYAML(t *testing.T) {
        path := filepath.Join(t.TempDir(), "old.yaml")
        raw := `clumps:
  - id: 1
    clumpName: a
    clumpCode: x
  - id: 2
    clumpName: b
    clumpCode: y
    linkedToAbove: 1
`
        if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
                t.Fatalf("write: %v", err)
        }
        got, err := ReadExport(path)
        if err != nil {
                t.Fatalf("read: %v", err)
        }
        if got.Schema != SchemaV1 || len(got.Clumps) != 2 || got.Clumps[1].Link != model.Below(1) {
                t.Fatalf("unexpected legacy import: %+v", got)
        }
}
