package store

import (
        "encoding/json"
        "fmt"
        "os"
        "path/filepath"
        "strings"

        "dataflow-cli/internal/model"

        "gopkg.in/yaml.v3"
)

const exportVersion = 1

type exportFile struct {
        Version   int           `json:"version" yaml:"version"`
        HighestID int           `json:"highestId" yaml:"highestId"`
        Clumps    []model.Clump `json:"clumps" yaml:"clumps"`
}

// Export is the result of reading an export file.
type Export struct {
        Clumps    []model.Clump
        HighestID int
        Schema    Schema
}

func isYAMLPath(path string) bool {
        switch strings.ToLower(filepath.Ext(path)) {
        case ".yaml", ".yml":
                return true
        }
        return false
}

// WriteExport writes clumps in the current schema. Files ending in .yaml or
// .yml are written as YAML, everything else as JSON.
func WriteExport(path string, clumps []model.Clump, highest int) error {
        if clumps == nil {
                clumps = []model.Clump{}
        }
        f := exportFile{Version: exportVersion, HighestID: highest, Clumps: clumps}
        var (
                b   []byte
                err error
        )
        if isYAMLPath(path) {
                b, err = yaml.Marshal(f)
        } else {
                b, err = json.MarshalIndent(f, "", "  ")
                b = append(b, '\n')
        }
        if err != nil {
                return err
        }
        dir := filepath.Dir(path)
        if err := os.MkdirAll(dir, 0o755); err != nil {
                return err
        }
        return atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, b, 0o644)
}

// ReadExport reads a JSON or YAML export. Records in legacy layouts are
// converted on the way in.
func ReadExport(path string) (Export, error) {
        b, err := os.ReadFile(path)
        if err != nil {
                return Export{}, err
        }
        if isYAMLPath(path) {
                b, err = yamlToJSON(b)
                if err != nil {
                        return Export{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
                }
        }
        f, err := decodeLegacyFile(b)
        if err != nil {
                return Export{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
        }
        return Export{Clumps: f.Clumps, HighestID: f.HighestID, Schema: f.Schema}, nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one
// record decoder.
func yamlToJSON(b []byte) ([]byte, error) {
        var v any
        if err := yaml.Unmarshal(b, &v); err != nil {
                return nil, err
        }
        return json.Marshal(v)
}
