package cli

import (
        "errors"
        "fmt"
        "strconv"
        "strings"
)

var errLinkRequired = errors.New("one of --left, --above or --column is required once the root exists")

type usageError struct {
        msg string
}

func (e usageError) Error() string { return e.msg }

func errUsage(format string, args ...any) error {
        return usageError{msg: fmt.Sprintf(format, args...)}
}

func parseClumpID(s string) (int, error) {
        id, err := strconv.Atoi(strings.TrimSpace(s))
        if err != nil || id < 1 {
                return 0, errUsage("invalid clump id: %q", s)
        }
        return id, nil
}
