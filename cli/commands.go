package cli

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/JamesCliffordSpratt/macros-sub001/cache"
	"github.com/JamesCliffordSpratt/macros-sub001/ledger"
	"github.com/JamesCliffordSpratt/macros-sub001/macro"
	"github.com/JamesCliffordSpratt/macros-sub001/store"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config  string `help:"Path to the TOML config file." type:"path" optional:""`
	Vault   string `help:"Vault root directory (overrides config)." type:"path" optional:""`
	Foods   string `help:"Food record directory (overrides config)." type:"path" optional:""`
	Verbose bool   `help:"Enable debug logging." short:"v"`
}

type Commands struct {
	Globals

	Totals TotalsCmd `cmd:"" help:"Aggregate one or more ledger identifiers and print macro totals."`
	Check  CheckCmd  `cmd:"" help:"Parse a document's ledger blocks and report unresolvable references."`
	Foods  FoodsCmd  `cmd:"" help:"List or look up food records."`
	Rename RenameCmd `cmd:"" help:"Rename a food across every ledger block in the vault."`
	Web    WebCmd    `cmd:"" help:"Start a web server over the vault."`
}

// App bundles the wired-up stores and engine a command runs against.
type App struct {
	Config      Config
	Logger      *log.Logger
	Vault       *store.Vault
	Foods       *store.FoodDir
	Resolver    *macro.Resolver
	Aggregator  *ledger.Aggregator
	Coordinator *cache.Coordinator
}

// App resolves config and flags into a ready-to-use application.
func (g *Globals) App() (*App, error) {
	cfg, err := LoadConfig(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Vault != "" {
		cfg.Vault = g.Vault
	}
	if g.Foods != "" {
		cfg.Foods = g.Foods
	}

	level := log.InfoLevel
	if g.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	vault := store.NewVault(cfg.Vault,
		store.WithBlockKeyword(cfg.BlockKeyword),
		store.WithVaultLogger(logger),
	)
	foods := store.NewFoodDir(cfg.FoodsDir(), logger)
	resolver := macro.NewResolver(foods)

	aggOpts := []ledger.Option{ledger.WithLogger(logger)}
	if len(cfg.Meals) > 0 {
		aggOpts = append(aggOpts, ledger.WithTemplates(store.Templates(cfg.Meals)))
	}
	aggregator := ledger.NewAggregator(resolver, aggOpts...)

	coordinator := cache.NewCoordinator(vault, aggregator, cache.WithLogger(logger))

	return &App{
		Config:      cfg,
		Logger:      logger,
		Vault:       vault,
		Foods:       foods,
		Resolver:    resolver,
		Aggregator:  aggregator,
		Coordinator: coordinator,
	}, nil
}
