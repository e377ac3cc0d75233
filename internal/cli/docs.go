package cli

import (
        "fmt"

        "dataflow-cli/internal/docs"
        "dataflow-cli/internal/store"
        "dataflow-cli/internal/tui"

        "github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
        var raw, render bool
        var width int

        cmd := &cobra.Command{
                Use:   "docs [topic]",
                Short: "Show on-demand documentation",
                Args:  cobra.MaximumNArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        if len(args) == 0 {
                                return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": docs.Topics()}})
                        }

                        topic := args[0]
                        body, ok := docs.Get(topic)
                        if !ok {
                                return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `dataflow docs` to list topics)", topic))
                        }

                        switch {
                        case render:
                                cfg, err := store.LoadConfig()
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                _, err = fmt.Fprintln(cmd.OutOrStdout(), tui.RenderMarkdown(body, width, cfg.TUI.MarkdownStyle))
                                return err
                        case raw:
                                _, err := fmt.Fprint(cmd.OutOrStdout(), body)
                                return err
                        }
                        return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
                },
        }

        cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
        cmd.Flags().BoolVar(&render, "render", false, "Render markdown for the terminal")
        cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
        cmd.MarkFlagsMutuallyExclusive("raw", "render")

        return cmd
}
