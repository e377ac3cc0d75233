package format

import (
        "encoding/json"
        "fmt"
        "io"

        "gopkg.in/yaml.v3"
)

// Formats lists the values accepted by --format.
var Formats = []string{"json", "edn", "yaml"}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - edn
// - yaml
func Write(w io.Writer, v any, format string, pretty bool) error {
        switch format {
        case "", "json":
                return WriteJSON(w, v, pretty)
        case "edn":
                return WriteEDN(w, v, pretty)
        case "yaml", "yml":
                return WriteYAML(w, v)
        default:
                return fmt.Errorf("unknown format: %s", format)
        }
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
        var b []byte
        var err error
        if pretty {
                b, err = json.MarshalIndent(v, "", "  ")
        } else {
                b, err = json.Marshal(v)
        }
        if err != nil {
                return err
        }

        _, err = fmt.Fprintln(w, string(b))
        return err
}

// WriteYAML writes v as YAML using the same field names as the JSON output.
func WriteYAML(w io.Writer, v any) error {
        x, err := generic(v)
        if err != nil {
                return err
        }
        enc := yaml.NewEncoder(w)
        enc.SetIndent(2)
        if err := enc.Encode(x); err != nil {
                return err
        }
        return enc.Close()
}

// generic round-trips v through JSON so every encoder sees plain maps,
// slices and scalars named by json tags.
func generic(v any) (any, error) {
        b, err := json.Marshal(v)
        if err != nil {
                return nil, err
        }
        var x any
        if err := json.Unmarshal(b, &x); err != nil {
                return nil, err
        }
        return x, nil
}
