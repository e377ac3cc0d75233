package format

import (
        "bytes"
        "fmt"
        "io"
        "sort"
        "strconv"
        "strings"
        "unicode"
)

// WriteEDN writes an EDN representation of v. Map keys become kebab-case
// keywords (linkedToLeft -> :linked-to-left); numeric keys, as in a column
// index, stay integers.
func WriteEDN(w io.Writer, v any, pretty bool) error {
        x, err := generic(v)
        if err != nil {
                return err
        }
        var buf bytes.Buffer
        enc := ednEncoder{pretty: pretty, indent: 2}
        enc.writeAny(&buf, x, 0)
        buf.WriteByte('\n')
        _, err = w.Write(buf.Bytes())
        return err
}

type ednEncoder struct {
        pretty bool
        indent int
}

func (e ednEncoder) writeAny(buf *bytes.Buffer, v any, level int) {
        switch t := v.(type) {
        case nil:
                buf.WriteString("nil")
        case bool:
                buf.WriteString(strconv.FormatBool(t))
        case string:
                buf.WriteString(strconv.Quote(t))
        case float64:
                // Ids and grid cells are integers.
                if float64(int64(t)) == t {
                        buf.WriteString(strconv.FormatInt(int64(t), 10))
                        return
                }
                buf.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
        case []any:
                e.writeVec(buf, t, level)
        case map[string]any:
                e.writeMap(buf, t, level)
        default:
                buf.WriteString(strconv.Quote(fmt.Sprintf("%v", v)))
        }
}

func (e ednEncoder) sep(buf *bytes.Buffer, last bool) {
        if last {
                return
        }
        if e.pretty {
                buf.WriteByte('\n')
        } else {
                buf.WriteByte(' ')
        }
}

func (e ednEncoder) open(buf *bytes.Buffer, c byte) {
        buf.WriteByte(c)
        if e.pretty {
                buf.WriteByte('\n')
        }
}

func (e ednEncoder) close(buf *bytes.Buffer, c byte, level int) {
        if e.pretty {
                buf.WriteByte('\n')
                buf.WriteString(strings.Repeat(" ", level*e.indent))
        }
        buf.WriteByte(c)
}

func (e ednEncoder) pad(buf *bytes.Buffer, level int) {
        if e.pretty {
                buf.WriteString(strings.Repeat(" ", level*e.indent))
        }
}

// writeVec keeps rows of scalars, such as grid rows, on one line even when
// pretty printing.
func (e ednEncoder) writeVec(buf *bytes.Buffer, xs []any, level int) {
        if len(xs) == 0 {
                buf.WriteString("[]")
                return
        }
        if !e.pretty || allScalars(xs) {
                flat := ednEncoder{indent: e.indent}
                buf.WriteByte('[')
                for i, it := range xs {
                        flat.writeAny(buf, it, level+1)
                        flat.sep(buf, i == len(xs)-1)
                }
                buf.WriteByte(']')
                return
        }
        e.open(buf, '[')
        for i, it := range xs {
                e.pad(buf, level+1)
                e.writeAny(buf, it, level+1)
                e.sep(buf, i == len(xs)-1)
        }
        e.close(buf, ']', level)
}

func (e ednEncoder) writeMap(buf *bytes.Buffer, m map[string]any, level int) {
        if len(m) == 0 {
                buf.WriteString("{}")
                return
        }
        keys := make([]string, 0, len(m))
        for k := range m {
                keys = append(keys, k)
        }
        sortKeys(keys)

        e.open(buf, '{')
        for i, k := range keys {
                e.pad(buf, level+1)
                buf.WriteString(ednKey(k))
                buf.WriteByte(' ')
                e.writeAny(buf, m[k], level+1)
                e.sep(buf, i == len(keys)-1)
        }
        e.close(buf, '}', level)
}

func allScalars(xs []any) bool {
        for _, x := range xs {
                switch x.(type) {
                case []any, map[string]any:
                        return false
                }
        }
        return true
}

// sortKeys orders integer keys numerically ahead of keyword keys.
func sortKeys(keys []string) {
        sort.Slice(keys, func(i, j int) bool {
                a, aErr := strconv.Atoi(keys[i])
                b, bErr := strconv.Atoi(keys[j])
                switch {
                case aErr == nil && bErr == nil:
                        return a < b
                case aErr == nil:
                        return true
                case bErr == nil:
                        return false
                }
                return keys[i] < keys[j]
        })
}

func ednKey(k string) string {
        if _, err := strconv.Atoi(k); err == nil {
                return k
        }
        return ":" + kebab(k)
}

func kebab(s string) string {
        s = strings.TrimSpace(s)
        var b strings.Builder
        for i, r := range s {
                switch {
                case r == ' ' || r == '_':
                        b.WriteByte('-')
                case unicode.IsUpper(r):
                        if i > 0 {
                                b.WriteByte('-')
                        }
                        b.WriteRune(unicode.ToLower(r))
                default:
                        b.WriteRune(r)
                }
        }
        return b.String()
}
