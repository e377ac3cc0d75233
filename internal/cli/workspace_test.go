package cli

import (
        "encoding/json"
        "reflect"
        "testing"
)

func runJSON(t *testing.T, args ...string) map[string]any {
        t.Helper()
        out, errOut, err := runCLI(t, args)
        if err != nil {
                t.Fatalf("%v: %v\nstderr: %s", args, err, string(errOut))
        }
        var env map[string]any
        if err := json.Unmarshal(out, &env); err != nil {
                t.Fatalf("%v: decode %q: %v", args, string(out), err)
        }
        return env
}

func TestCLI_WorkspaceFlow(t *testing.T) {
        setupDir(t)

        // Implicit default workspace.
        cur := runJSON(t, "workspace", "current")["data"].(map[string]any)
        if cur["workspace"] != "default" {
                t.Fatalf("expected default workspace, got %v", cur)
        }

        runJSON(t, "--workspace", "alpha", "init")
        runJSON(t, "--workspace", "alpha", "add", "--name", "root")
        runJSON(t, "--workspace", "beta", "init")

        names := runJSON(t, "workspace", "list")["data"].([]any)
        if !reflect.DeepEqual(names, []any{"alpha", "beta"}) {
                t.Fatalf("unexpected workspaces %v", names)
        }

        // init on a fresh config made alpha current.
        cur = runJSON(t, "workspace", "current")["data"].(map[string]any)
        if cur["workspace"] != "alpha" {
                t.Fatalf("expected alpha current, got %v", cur)
        }

        runJSON(t, "workspace", "rename", "alpha", "gamma")
        list := runJSON(t, "list")["data"].([]any)
        if len(list) != 1 {
                t.Fatalf("expected renamed workspace to keep its clump, got %v", list)
        }

        runJSON(t, "workspace", "use", "beta")
        if got := len(runJSON(t, "list")["data"].([]any)); got != 0 {
                t.Fatalf("expected empty beta, got %d clumps", got)
        }
}
