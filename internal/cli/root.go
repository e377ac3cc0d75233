package cli

import (
        "context"
        "fmt"
        "io"
        "os"
        "strings"

        "dataflow-cli/internal/format"
        "dataflow-cli/internal/logging"
        "dataflow-cli/internal/store"
        "dataflow-cli/internal/tui"

        "github.com/MakeNowJust/heredoc/v2"
        "github.com/spf13/cobra"
        "golang.org/x/term"
)

type App struct {
        Dir        string
        Workspace  string
        PrettyJSON bool
        Format     string
        Debug      bool
}

func NewRootCmd() *cobra.Command {
        app := &App{}

        cmd := &cobra.Command{
                Use:          "dataflow",
                Short:        "Dataflow clump grid (local-first) CLI + TUI",
                SilenceUsage: true,
                Long: heredoc.Doc(`
                        Lay out named code clumps on a grid. Each clump hangs either to the
                        right of another clump or below one; the grid is rebuilt from the
                        ordered clump list after every change.
                `),
                Example: heredoc.Doc(`
                        # Start the interactive TUI
                        dataflow

                        # Build a small layout
                        dataflow add --name source --code 'read()'
                        dataflow add --name parse --above 1
                        dataflow add --name side --left 2
                        dataflow grid --draw
                `),
                RunE: func(cmd *cobra.Command, args []string) error {
                        // No subcommand on a terminal => interactive TUI.
                        if len(args) == 0 && isTerminal(cmd.OutOrStdout()) {
                                return runTUI(cmd, app)
                        }
                        return cmd.Help()
                },
        }

        cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
                initLogging(app)
                logging.ForComponent(logging.CompCLI).Debug("command", "path", cmd.CommandPath(), "args", args)
                return nil
        }

        cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("DATAFLOW_DIR", ""), "Path to store dir (overrides workspace resolution)")
        cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("DATAFLOW_WORKSPACE", ""), "Workspace name (default: 'default')")
        cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
        cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DATAFLOW_FORMAT", "json"), "Output format ("+strings.Join(format.Formats, "|")+")")
        cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Write debug logs")

        cmd.AddCommand(newInitCmd(app))
        cmd.AddCommand(newAddCmd(app))
        cmd.AddCommand(newEditCmd(app))
        cmd.AddCommand(newDeleteCmd(app))
        cmd.AddCommand(newListCmd(app))
        cmd.AddCommand(newShowCmd(app))
        cmd.AddCommand(newGridCmd(app))
        cmd.AddCommand(newBelowCmd(app))
        cmd.AddCommand(newTailCmd(app))
        cmd.AddCommand(newCandidatesCmd(app))
        cmd.AddCommand(newColumnsCmd(app))
        cmd.AddCommand(newEventsCmd(app))
        cmd.AddCommand(newExportCmd(app))
        cmd.AddCommand(newImportCmd(app))
        cmd.AddCommand(newBackupCmd(app))
        cmd.AddCommand(newWorkspaceCmd(app))
        cmd.AddCommand(newDocsCmd(app))
        cmd.AddCommand(newTUICmd(app))

        return cmd
}

func isTerminal(w io.Writer) bool {
        f, ok := w.(*os.File)
        return ok && term.IsTerminal(int(f.Fd()))
}

// initLogging turns on file logging when --debug, DATAFLOW_LOG_LEVEL or the
// [logs] config section asks for it.
func initLogging(app *App) {
        cfg, err := store.LoadConfig()
        if err != nil {
                cfg = &store.GlobalConfig{}
        }
        level := envOr("DATAFLOW_LOG_LEVEL", cfg.Logs.Level)
        if level == "" && !app.Debug {
                logging.Init(logging.Config{})
                return
        }
        dir, err := store.LogDir()
        if err != nil {
                logging.Init(logging.Config{Debug: app.Debug})
                return
        }
        logging.Init(logging.Config{
                LogDir:     dir,
                Level:      level,
                Format:     cfg.Logs.Format,
                MaxSizeMB:  cfg.Logs.MaxSizeMB,
                MaxBackups: cfg.Logs.MaxBackups,
                Debug:      app.Debug,
        })
}

func runTUI(cmd *cobra.Command, app *App) error {
        db, s, err := loadDB(app)
        if err != nil {
                return writeErr(cmd, err)
        }
        cfg, err := store.LoadConfig()
        if err != nil {
                return writeErr(cmd, err)
        }
        return tui.Run(s, db, tui.Options{
                Workspace:     app.Workspace,
                MarkdownStyle: cfg.TUI.MarkdownStyle,
                CellWidth:     cfg.TUI.CellWidth,
        })
}

func loadDB(app *App) (*store.DB, store.Store, error) {
        dir := app.Dir
        if dir == "" {
                // Workspace-first:
                // 1) --workspace
                // 2) ~/.dataflow/config.toml current_workspace
                // 3) default workspace ("default")
                name := app.Workspace
                if name == "" {
                        cur, err := store.CurrentWorkspace()
                        if err != nil {
                                return nil, store.Store{}, err
                        }
                        name = cur
                }
                d, err := store.WorkspaceDir(name)
                if err != nil {
                        return nil, store.Store{}, err
                }
                app.Workspace = name
                app.Dir = d
                dir = d
        }

        s := store.Store{Dir: dir}
        db, err := s.Load()
        if err != nil {
                return nil, s, err
        }
        return db, s, nil
}

// saveWithEvent persists db and records one event for the mutation.
func saveWithEvent(ctx context.Context, s store.Store, db *store.DB, typ string, clumpID int, payload map[string]any) error {
        if err := s.Save(db); err != nil {
                return err
        }
        if _, err := s.AppendEvent(ctx, typ, clumpID, payload); err != nil {
                return fmt.Errorf("record %s event: %w", typ, err)
        }
        return nil
}

func envOr(k, d string) string {
        if v := os.Getenv(k); v != "" {
                return v
        }
        return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
        return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
        fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
        logging.ForComponent(logging.CompCLI).Warn("command failed", "path", cmd.CommandPath(), "err", err)
        return err
}
