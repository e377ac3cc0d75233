package cli

import (
        "errors"
        "path/filepath"
        "strings"

        "dataflow-cli/internal/grid"
        "dataflow-cli/internal/store"

        "github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "export <file>",
                Short: "Export clumps to a .json or .yaml file",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        db, _, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        path := strings.TrimSpace(args[0])
                        if err := store.WriteExport(path, db.Clumps, db.HighestID); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": map[string]any{"path": path, "clumps": len(db.Clumps)},
                        })
                },
        }
}

func newImportCmd(app *App) *cobra.Command {
        var replace bool

        cmd := &cobra.Command{
                Use:   "import <file>",
                Short: "Import clumps from a .json or .yaml file (older layouts are converted)",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        db, s, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if len(db.Clumps) > 0 && !replace {
                                return writeErr(cmd, errors.New("workspace already has clumps; pass --replace to overwrite them"))
                        }
                        path := strings.TrimSpace(args[0])
                        ex, err := store.ReadExport(path)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        g, idx, err := grid.Build(ex.Clumps)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        db.Replace(ex.Clumps, ex.HighestID, store.Layout{Grid: g, Columns: idx})

                        payload := map[string]any{
                                "file":   filepath.Base(path),
                                "clumps": len(ex.Clumps),
                                "schema": ex.Schema.String(),
                        }
                        if err := saveWithEvent(cmd.Context(), s, db, "store.import", 0, payload); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": payload})
                },
        }
        cmd.Flags().BoolVar(&replace, "replace", false, "Replace existing clumps")
        return cmd
}

func newBackupCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "backup <file>",
                Short: "Copy the workspace database to a file",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        _, s, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        dest, err := filepath.Abs(strings.TrimSpace(args[0]))
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := s.Backup(cmd.Context(), dest); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": dest}})
                },
        }
}
