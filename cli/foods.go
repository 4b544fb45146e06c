package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/JamesCliffordSpratt/macros-sub001/macro"
)

type FoodsCmd struct {
	Query string `help:"Substring to match against food names." arg:"" optional:""`
}

func (cmd *FoodsCmd) Run(ctx *kong.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	runCtx := context.Background()

	var records []*macro.Record
	if cmd.Query == "" {
		records, err = app.Foods.List(runCtx)
	} else {
		records, err = app.Foods.FindByName(runCtx, cmd.Query)
	}
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	if len(records) == 0 {
		printInfof(ctx.Stdout, "No food records found")
		return nil
	}

	for _, rec := range records {
		_, _ = fmt.Fprintf(ctx.Stdout, "%s  %s kcal  %sp  %sf  %sc per %sg\n",
			pathStyle.Render(rec.Name),
			rec.Calories, rec.Protein, rec.Fat, rec.Carbs, rec.ServingGrams)
	}
	return nil
}
