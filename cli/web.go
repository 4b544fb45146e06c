package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/JamesCliffordSpratt/macros-sub001/web"
)

type WebCmd struct {
	Listen string `help:"Address to listen on (overrides config)." optional:""`
}

func (cmd *WebCmd) Run(ctx *kong.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	addr := app.Config.Listen
	if cmd.Listen != "" {
		addr = cmd.Listen
	}

	server := web.New(addr, app.Vault, app.Foods, app.Coordinator, app.Logger)
	server.Version = Version
	server.CommitSHA = CommitSHA

	printInfof(ctx.Stdout, "Starting server on %s", addr)
	printInfof(ctx.Stdout, "Serving vault: %s", pathStyle.Render(app.Vault.Root()))

	return server.Start(context.Background())
}
