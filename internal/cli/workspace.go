package cli

import (
        "dataflow-cli/internal/store"

        "github.com/spf13/cobra"
)

func newWorkspaceCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "workspace",
                Short: "Workspace management",
        }

        cmd.AddCommand(newWorkspaceListCmd(app))
        cmd.AddCommand(newWorkspaceCurrentCmd(app))
        cmd.AddCommand(newWorkspaceUseCmd(app))
        cmd.AddCommand(newWorkspaceRenameCmd(app))

        return cmd
}

func newWorkspaceListCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "list",
                Short: "List workspaces",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        names, err := store.ListWorkspaces()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": names})
                },
        }
}

func newWorkspaceCurrentCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "current",
                Short: "Show the current workspace",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        name := app.Workspace
                        if name == "" {
                                cur, err := store.CurrentWorkspace()
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                name = cur
                        }
                        dir, err := store.WorkspaceDir(name)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": map[string]any{"workspace": name, "dir": dir},
                        })
                },
        }
}

func newWorkspaceUseCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "use <name>",
                Short: "Set the current workspace",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        name, err := store.NormalizeWorkspaceName(args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := store.UseWorkspace(name); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": map[string]any{"workspace": name}})
                },
        }
}

func newWorkspaceRenameCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "rename <old> <new>",
                Short: "Rename a workspace",
                Args:  cobra.ExactArgs(2),
                RunE: func(cmd *cobra.Command, args []string) error {
                        if err := store.RenameWorkspace(args[0], args[1]); err != nil {
                                return writeErr(cmd, err)
                        }
                        newName, _ := store.NormalizeWorkspaceName(args[1])
                        return writeOut(cmd, app, map[string]any{
                                "data": map[string]any{"from": args[0], "to": newName},
                        })
                },
        }
}
