// Package cache owns the canonical per-identifier ledger tables and drives
// the coordinated "reload all, then redraw all" refresh cycle that keeps
// every mounted renderer consistent with the documents and the food
// database.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"

	"github.com/JamesCliffordSpratt/macros-sub001/ledger"
	"github.com/JamesCliffordSpratt/macros-sub001/parser"
	"github.com/JamesCliffordSpratt/macros-sub001/store"
)

// ErrBusy is returned by Exclusive when a refresh cycle holds the guard.
var ErrBusy = errors.New("a refresh cycle is in progress")

// Table is the resolved, merged entry list cached under a ledger
// identifier. It is replaced wholesale on every refresh, never patched in
// place, so readers iterating an old table are never corrupted by a
// concurrent reload.
type Table struct {
	ID      string
	Entries []parser.Entry
}

// IDResult pairs one identifier with its own aggregation.
type IDResult struct {
	ID string
	ledger.Result
}

// Result is what a renderer is redrawn with: one breakdown per identifier in
// input order, plus the combined total summed from the already-rounded
// per-identifier totals.
type Result struct {
	Breakdown []IDResult
	Aggregate ledger.Totals
}

// Renderer is a mounted view bound to one or more ledger identifiers. The
// coordinator depends only on these three capabilities, never on a concrete
// renderer type.
type Renderer interface {
	// Mounted reports whether the renderer is still alive. Dead renderers
	// are dropped from the binding set during the next refresh pass.
	Mounted() bool

	// BoundIdentifiers returns the (possibly compound, comma-joined)
	// identifiers this renderer displays.
	BoundIdentifiers() []string

	// Redraw re-renders the view with fresh results.
	Redraw(ctx context.Context, result Result) error
}

// Coordinator owns the table cache and the renderer bindings. A single
// refresh-in-progress guard is the system's only mutual-exclusion mechanism;
// a refresh requested while one is running is silently skipped.
type Coordinator struct {
	docs       store.DocumentStore
	aggregator *ledger.Aggregator
	logger     *log.Logger

	tables *gocache.Cache

	mu        sync.Mutex
	renderers map[Renderer]struct{}
	bindings  map[string]map[Renderer]struct{}

	refreshing atomic.Bool
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger routes refresh diagnostics to the given logger.
func WithLogger(logger *log.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = logger }
}

// NewCoordinator creates a coordinator over the given document store and
// aggregator.
func NewCoordinator(docs store.DocumentStore, aggregator *ledger.Aggregator, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		docs:       docs,
		aggregator: aggregator,
		logger:     log.Default(),
		tables:     gocache.New(gocache.NoExpiration, 0),
		renderers:  make(map[Renderer]struct{}),
		bindings:   make(map[string]map[Renderer]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SplitIdentifiers expands a possibly compound identifier into its
// individual keys. A compound identifier is also a key in its own right, so
// "a,b" yields ["a,b", "a", "b"].
func SplitIdentifiers(identifier string) []string {
	parts := strings.Split(identifier, ",")
	if len(parts) == 1 {
		return []string{strings.TrimSpace(identifier)}
	}
	keys := []string{identifier}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// constituents returns only the single keys of an identifier.
func constituents(identifier string) []string {
	keys := SplitIdentifiers(identifier)
	if len(keys) > 1 {
		return keys[1:]
	}
	return keys
}

// Bind registers a renderer under every identifier it reports, compound keys
// and constituent keys alike.
func (c *Coordinator) Bind(r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.renderers[r] = struct{}{}
	for _, id := range r.BoundIdentifiers() {
		for _, key := range SplitIdentifiers(id) {
			set, ok := c.bindings[key]
			if !ok {
				set = make(map[Renderer]struct{})
				c.bindings[key] = set
			}
			set[r] = struct{}{}
		}
	}
}

// Table returns the identifier's cached table, loading it from the document
// store on first use. A compound identifier's table is the concatenation of
// its constituents' merged entries.
func (c *Coordinator) Table(ctx context.Context, identifier string) (*Table, error) {
	if cached, ok := c.tables.Get(identifier); ok {
		return cached.(*Table), nil
	}
	return c.reload(ctx, identifier)
}

// reload reads the identifier's block and replaces its cached table
// wholesale.
func (c *Coordinator) reload(ctx context.Context, identifier string) (*Table, error) {
	keys := constituents(identifier)

	var entries []parser.Entry
	for _, key := range keys {
		lines, err := c.docs.ReadLedgerBlock(ctx, key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ledger.Merge(parser.ParseLines(lines))...)
	}

	table := &Table{ID: identifier, Entries: entries}
	c.tables.Set(identifier, table, gocache.NoExpiration)
	return table, nil
}

// Results aggregates each identifier against its own cached table, in input
// order, and combines the already-rounded per-identifier totals. Compound
// identifiers are expanded so every constituent gets its own breakdown row.
func (c *Coordinator) Results(ctx context.Context, identifiers []string) (Result, error) {
	var res Result
	var results []ledger.Result

	for _, id := range identifiers {
		for _, key := range constituents(id) {
			table, err := c.Table(ctx, key)
			if err != nil {
				return Result{}, err
			}
			r := c.aggregator.Aggregate(ctx, table.Entries)
			res.Breakdown = append(res.Breakdown, IDResult{ID: key, Result: r})
			results = append(results, r)
		}
	}

	res.Aggregate = ledger.Combine(results)
	return res, nil
}

// resultsDegraded aggregates like Results but skips identifiers whose
// tables cannot be loaded, logging each failure. One bad identifier never
// costs a renderer its redraw.
func (c *Coordinator) resultsDegraded(ctx context.Context, identifiers []string) Result {
	var res Result
	var results []ledger.Result

	for _, id := range identifiers {
		for _, key := range constituents(id) {
			table, err := c.Table(ctx, key)
			if err != nil {
				c.logger.Error("failed to load ledger table", "identifier", key, "err", err)
				continue
			}
			r := c.aggregator.Aggregate(ctx, table.Entries)
			res.Breakdown = append(res.Breakdown, IDResult{ID: key, Result: r})
			results = append(results, r)
		}
	}

	res.Aggregate = ledger.Combine(results)
	return res
}

// ForceCompleteRefresh runs one full reload-then-redraw cycle. If a cycle is
// already in flight the call is a no-op; the guard is the only concurrency
// control in the system and every refresh entry point goes through it. All
// identifier reloads complete before any redraw begins, and per-identifier
// failures are logged without aborting the batch.
func (c *Coordinator) ForceCompleteRefresh(ctx context.Context) {
	if !c.refreshing.CompareAndSwap(false, true) {
		c.logger.Debug("refresh already in progress; ignoring")
		return
	}
	defer c.refreshing.Store(false)

	// Step 1: drop every cached table.
	c.tables.Flush()

	// Step 2: rebuild the binding set from the mounted renderers and collect
	// the union of their identifiers. Dead handles are dropped here, in the
	// same pass.
	live, identifiers := c.rebuildBindings()

	// Step 3: reload every identifier before any redraw.
	for _, id := range identifiers {
		if _, err := c.reload(ctx, id); err != nil {
			c.logger.Error("failed to reload ledger block", "identifier", id, "err", err)
		}
	}

	// Step 4: redraw every mounted renderer. An identifier that failed to
	// load is logged and left out, so the renderer still sees fresh results
	// for the identifiers that did.
	for _, r := range live {
		var ids []string
		for _, bound := range r.BoundIdentifiers() {
			ids = append(ids, constituents(bound)...)
		}
		if err := r.Redraw(ctx, c.resultsDegraded(ctx, ids)); err != nil {
			c.logger.Error("renderer redraw failed", "err", err)
		}
	}
}

// rebuildBindings replaces the binding sets from scratch, keeping only
// mounted renderers, and returns them with the union of their identifier
// keys.
func (c *Coordinator) rebuildBindings() ([]Renderer, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bindings := make(map[string]map[Renderer]struct{})
	var live []Renderer
	var identifiers []string
	seen := make(map[string]bool)

	for r := range c.renderers {
		if !r.Mounted() {
			delete(c.renderers, r)
			continue
		}
		live = append(live, r)
		for _, id := range r.BoundIdentifiers() {
			for _, key := range SplitIdentifiers(id) {
				set, ok := bindings[key]
				if !ok {
					set = make(map[Renderer]struct{})
					bindings[key] = set
				}
				set[r] = struct{}{}
				if !seen[key] {
					seen[key] = true
					identifiers = append(identifiers, key)
				}
			}
		}
	}

	c.bindings = bindings
	return live, identifiers
}

// Exclusive runs fn under the refresh guard so bulk mutations (such as a
// rename apply) never race a refresh cycle. It returns ErrBusy instead of
// waiting when a cycle is in flight.
func (c *Coordinator) Exclusive(ctx context.Context, fn func(context.Context) error) error {
	if !c.refreshing.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.refreshing.Store(false)
	return fn(ctx)
}

// Invalidate drops a single identifier's cached tables (compound and
// constituent keys alike) without touching renderers.
func (c *Coordinator) Invalidate(identifier string) {
	for _, key := range SplitIdentifiers(identifier) {
		c.tables.Delete(key)
	}
}
