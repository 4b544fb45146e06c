package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/JamesCliffordSpratt/macros-sub001/cache"
	"github.com/JamesCliffordSpratt/macros-sub001/rename"
)

type RenameCmd struct {
	Old string `help:"Current food name." arg:""`
	New string `help:"New food name." arg:""`

	Backup        bool `help:"Write a dated backup of each file before rewriting it."`
	CaseSensitive bool `help:"Match the old name exactly instead of case-folded."`
	Yes           bool `help:"Apply without a confirmation prompt." short:"y"`
}

func (cmd *RenameCmd) Run(ctx *kong.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	runCtx := context.Background()

	foods, err := app.Foods.List(runCtx)
	if err != nil {
		return fmt.Errorf("failed to list food records: %w", err)
	}
	if err := rename.Validate(cmd.New, foods); err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	opts := rename.Options{
		CaseSensitive: cmd.CaseSensitive || app.Config.CaseSensitive,
		Backup:        cmd.Backup,
		BlockKeyword:  app.Config.BlockKeyword,
		Logger:        app.Logger,
	}

	affected, err := rename.Scan(runCtx, app.Vault, cmd.Old, cmd.New, opts)
	if err != nil {
		return err
	}
	if len(affected) == 0 {
		printInfof(ctx.Stdout, "No references to %q found", cmd.Old)
		return nil
	}

	total := 0
	for _, file := range affected {
		_, _ = fmt.Fprintln(ctx.Stdout, pathStyle.Render(file.Path))
		for _, m := range file.Matches {
			total++
			_, _ = fmt.Fprintf(ctx.Stdout, "  %d: %s\n", m.Line, mutedStyle.Render(m.Before))
			_, _ = fmt.Fprintf(ctx.Stdout, "     %s\n", m.After)
		}
	}
	printInfof(ctx.Stdout, "%d reference(s) in %d file(s)", total, len(affected))

	if !cmd.Yes {
		confirmed, err := promptYesNo(fmt.Sprintf("Rename %q to %q?", cmd.Old, cmd.New))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirmed {
			printInfof(ctx.Stdout, "Aborted")
			return nil
		}
	}

	var changed int
	err = app.Coordinator.Exclusive(runCtx, func(runCtx context.Context) error {
		var applyErr error
		changed, applyErr = rename.Apply(runCtx, app.Vault, affected, cmd.Old, cmd.New, opts)
		return applyErr
	})
	if errors.Is(err, cache.ErrBusy) {
		printError(ctx.Stderr, "a refresh is in progress; try again")
		return NewCommandError(1)
	}
	if err != nil {
		return err
	}

	app.Coordinator.ForceCompleteRefresh(runCtx)

	printSuccess(ctx.Stdout, fmt.Sprintf("Rewrote %d file(s)", changed))
	return nil
}
