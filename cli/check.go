package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/JamesCliffordSpratt/macros-sub001/ledger"
	"github.com/JamesCliffordSpratt/macros-sub001/parser"
)

type CheckCmd struct {
	File FileOrStdin `help:"Markdown document to check (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Dump bool        `help:"Dump the parsed entries of every ledger block."`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	app, err := globals.App()
	if err != nil {
		return err
	}

	content, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	blocks := parser.ScanBlocks(string(content), app.Config.BlockKeyword)
	if len(blocks) == 0 {
		printInfof(ctx.Stdout, "No ledger blocks in %s", pathStyle.Render(cmd.File.Filename))
		return nil
	}

	runCtx := context.Background()
	unresolved := 0

	for _, block := range blocks {
		entries := ledger.Merge(parser.ParseLines(block.Lines))

		if cmd.Dump {
			repr.Println(entries)
		}

		result := app.Aggregator.Aggregate(runCtx, entries)
		for _, row := range result.Rows {
			if row.Unresolved {
				unresolved++
				_, _ = fmt.Fprintf(ctx.Stderr, "%s:%d: unresolved food reference %q\n",
					cmd.File.Filename, block.Start, row.Food)
			}
		}
	}

	if unresolved > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d unresolved reference(s) found", unresolved))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, "Check passed")
	return nil
}
