package cli

import "github.com/spf13/cobra"

func newTUICmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "tui",
                Short: "Browse the grid interactively",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        return runTUI(cmd, app)
                },
        }
}
