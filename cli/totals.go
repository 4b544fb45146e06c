package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"

	"github.com/JamesCliffordSpratt/macros-sub001/cache"
	"github.com/JamesCliffordSpratt/macros-sub001/ledger"
	"github.com/JamesCliffordSpratt/macros-sub001/web"
)

type TotalsCmd struct {
	IDs  []string `help:"Ledger identifiers, comma-joined for a combined view." arg:""`
	JSON bool     `help:"Emit machine-readable JSON instead of a table."`
}

func (cmd *TotalsCmd) Run(ctx *kong.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	result, err := app.Coordinator.Results(context.Background(), cmd.IDs)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	if cmd.JSON {
		return writeTotalsJSON(ctx.Stdout, result)
	}

	renderTotals(ctx.Stdout, result)
	return nil
}

func writeTotalsJSON(w io.Writer, result cache.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(web.NewTotalsResponse(result))
}

// renderTotals prints one aligned table per identifier, plus a combined
// footer when more than one ledger was requested.
func renderTotals(w io.Writer, result cache.Result) {
	for i, br := range result.Breakdown {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, pathStyle.Render(br.ID))
		renderRows(w, br.Rows, br.Total)
	}

	if len(result.Breakdown) > 1 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, totalLine("COMBINED", result.Aggregate))
	}
}

func renderRows(w io.Writer, rows []ledger.Row, total ledger.Totals) {
	table := [][]string{{"FOOD", "MEAL", "GRAMS", "KCAL", "PROTEIN", "FAT", "CARBS"}}
	for _, row := range rows {
		grams := ""
		if row.Grams != nil {
			grams = row.Grams.String()
		}
		if row.Unresolved {
			table = append(table, []string{row.Food, row.Meal, grams, "?", "?", "?", "?"})
			continue
		}
		table = append(table, []string{
			row.Food, row.Meal, grams,
			row.Macros.Calories.String(),
			row.Macros.Protein.String(),
			row.Macros.Fat.String(),
			row.Macros.Carbs.String(),
		})
	}

	widths := columnWidths(table)
	for i, row := range table {
		line := renderTableRow(row, widths)
		if i == 0 {
			line = mutedStyle.Render(line)
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w, totalLine("TOTAL", total))
}

func totalLine(label string, t ledger.Totals) string {
	return fmt.Sprintf("%s  %s kcal  %sp  %sf  %sc",
		label, t.Calories, t.Protein, t.Fat, t.Carbs)
}

// columnWidths measures each column by display width, not byte length, so
// food names with wide runes stay aligned.
func columnWidths(table [][]string) []int {
	widths := make([]int, len(table[0]))
	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func renderTableRow(row []string, widths []int) string {
	var b strings.Builder
	for i, cell := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(cell)
		if i < len(row)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
		}
	}
	return b.String()
}
