package cli

import (
        "fmt"

        "dataflow-cli/internal/grid"
        "dataflow-cli/internal/mutate"
        "dataflow-cli/internal/tui"

        "github.com/spf13/cobra"
)

func newGridCmd(app *App) *cobra.Command {
        var draw bool
        var cellWidth int

        cmd := &cobra.Command{
                Use:   "grid",
                Short: "Show the placement grid",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        db, _, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        l, err := db.Layout()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if draw {
                                _, err := fmt.Fprintln(cmd.OutOrStdout(), tui.DrawGrid(db.Clumps, l.Grid, tui.GridStyle{CellWidth: cellWidth}))
                                return err
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": map[string]any{
                                        "rows":        l.Grid.Rows(),
                                        "columns":     l.Grid.Columns(),
                                        "cells":       l.Grid.Cells(),
                                        "columnIndex": l.Columns,
                                },
                        })
                },
        }
        cmd.Flags().BoolVar(&draw, "draw", false, "Draw the grid as boxes instead of structured output")
        cmd.Flags().IntVar(&cellWidth, "cell-width", 0, "Inner width of a drawn cell")
        return cmd
}

func newBelowCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "below <clump-id>",
                Short: "List the clumps chained below a clump",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id, err := parseClumpID(args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        db, _, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if _, ok := db.FindClump(id); !ok {
                                return writeErr(cmd, mutate.NotFoundError{Kind: "clump", ID: id})
                        }
                        l, err := db.Layout()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": grid.IDsBelow(db.Clumps, id),
                                "meta": map[string]any{"cellBelow": l.Grid.Below(id)},
                        })
                },
        }
}

func newTailCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "tail <clump-id>",
                Short: "List every clump that depends on a clump",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id, err := parseClumpID(args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        db, _, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if _, ok := db.FindClump(id); !ok {
                                return writeErr(cmd, mutate.NotFoundError{Kind: "clump", ID: id})
                        }
                        return writeOut(cmd, app, map[string]any{"data": grid.FullTail(db.Clumps, id)})
                },
        }
}

func newCandidatesCmd(app *App) *cobra.Command {
        var openRight bool

        cmd := &cobra.Command{
                Use:   "candidates [clump-id]",
                Short: "List clumps a clump may link to",
                Long:  "List clumps a clump may link to without creating a cycle. Without an id, lists targets for a new clump.",
                Args:  cobra.MaximumNArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id := 0
                        if len(args) == 1 {
                                var err error
                                if id, err = parseClumpID(args[0]); err != nil {
                                        return writeErr(cmd, err)
                                }
                        }
                        db, _, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if id != 0 {
                                if _, ok := db.FindClump(id); !ok {
                                        return writeErr(cmd, mutate.NotFoundError{Kind: "clump", ID: id})
                                }
                        }
                        out := grid.LinkCandidates(db.Clumps, id)
                        if openRight {
                                out = grid.OpenRightSlots(db.Clumps, id)
                        }
                        return writeOut(cmd, app, map[string]any{"data": out})
                },
        }
        cmd.Flags().BoolVar(&openRight, "open-right", false, "Only clumps whose right-hand slot is free")
        return cmd
}

func newColumnsCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "columns",
                Short: "List grid columns with the clump a new one would hang below",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        db, _, err := loadDB(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        l, err := db.Layout()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        out := []map[string]any{}
                        if len(db.Clumps) > 0 {
                                for col := 1; col <= l.Grid.Columns(); col++ {
                                        out = append(out, map[string]any{
                                                "column": col,
                                                "lastId": l.Grid.LastInColumn(col),
                                        })
                                }
                        }
                        return writeOut(cmd, app, map[string]any{"data": out})
                },
        }
}
