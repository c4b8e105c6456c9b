// Package search turns address keystrokes into a list of suggestions.
//
// A Controller owns three observable cells (suggestions, loading, selection).
// Every query of MinQueryLength runes or more starts its own lookup; lookups
// are never cancelled when the user keeps typing. Each lookup is tagged with a
// generation number when it is issued and its result is applied only if no
// newer lookup has already landed, so a slow response for "Que" can never
// overwrite the suggestions for "Quebec".
package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/dukerupert/addresscomplete/internal/address"
	"github.com/dukerupert/addresscomplete/internal/canadapost"
	"github.com/dukerupert/addresscomplete/internal/telemetry"
)

// MinQueryLength is the shortest query, in runes, that triggers a lookup.
const MinQueryLength = 3

// QueryAccepted reports whether query is long enough to be looked up.
func QueryAccepted(query string) bool {
	return utf8.RuneCountInString(query) >= MinQueryLength
}

// Selection is the address the user committed to, if any.
type Selection struct {
	Address address.Address
	Valid   bool
}

// Selected returns a present Selection holding a.
func Selected(a address.Address) Selection {
	return Selection{Address: a, Valid: true}
}

// State is a consistent view of all three cells.
type State struct {
	Suggestions []address.Address
	Loading     bool
	Selection   Selection
}

// Config contains the collaborators of a Controller.
type Config struct {
	Provider canadapost.Provider

	// Params builds the lookup parameters for a query.
	// Optional: defaults to canadapost.DefaultFindParams.
	Params func(query string) canadapost.FindParams

	Logger  *slog.Logger       // Optional: defaults to slog.Default()
	Metrics *telemetry.Metrics // Optional
}

// Controller is the suggestion search state holder for one input session.
// Its methods are safe for concurrent use.
type Controller struct {
	ctx      context.Context
	provider canadapost.Provider
	params   func(string) canadapost.FindParams
	logger   *slog.Logger
	metrics  *telemetry.Metrics

	// mu serializes every state transition.
	mu      sync.Mutex
	issued  uint64 // generation of the newest lookup started
	applied uint64 // results from generations <= applied are stale
	wg      sync.WaitGroup

	suggestions *Cell[[]address.Address]
	loading     *Cell[bool]
	selection   *Cell[Selection]
}

// NewController creates a controller. ctx bounds the lifetime of all lookups
// it starts; cancel it only when the host shuts down.
func NewController(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Provider == nil {
		return nil, errors.New("search: provider is required")
	}

	params := cfg.Params
	if params == nil {
		params = canadapost.DefaultFindParams
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		ctx:         ctx,
		provider:    cfg.Provider,
		params:      params,
		logger:      logger,
		metrics:     cfg.Metrics,
		suggestions: newCell([]address.Address{}),
		loading:     newCell(false),
		selection:   newCell(Selection{}),
	}, nil
}

// Suggestions is the current suggestion list, in provider order.
func (c *Controller) Suggestions() *Cell[[]address.Address] { return c.suggestions }

// Loading is true while the lookup for the newest query is in flight.
func (c *Controller) Loading() *Cell[bool] { return c.loading }

// Selection is the committed address.
func (c *Controller) Selection() *Cell[Selection] { return c.selection }

// Snapshot returns all three cells read under the same lock.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Suggestions: c.suggestions.Get(),
		Loading:     c.loading.Get(),
		Selection:   c.selection.Get(),
	}
}

// OnQueryChanged handles a keystroke in the search field.
//
// Any keystroke drops the current selection. Queries shorter than
// MinQueryLength clear the suggestions without a lookup and make every
// outstanding lookup stale; longer ones start a new lookup.
func (c *Controller) OnQueryChanged(query string) {
	c.mu.Lock()

	var notify []func()
	if c.selection.Get().Valid {
		notify = append(notify, c.selection.set(Selection{}))
	}

	if !QueryAccepted(query) {
		c.invalidateLocked()
		notify = append(notify,
			c.suggestions.set([]address.Address{}),
			c.loading.set(false),
		)
		c.mu.Unlock()

		c.metrics.GateRejected()
		run(notify)
		return
	}

	c.issued++
	gen := c.issued
	notify = append(notify, c.loading.set(true))
	c.wg.Add(1)
	c.mu.Unlock()

	run(notify)
	go c.fetch(gen, query)
}

// OnSuggestionSelected commits a as the selection and clears the suggestions.
// Lookups still in flight become stale; the loading flag is left alone.
func (c *Controller) OnSuggestionSelected(a address.Address) {
	c.mu.Lock()
	c.invalidateLocked()
	notify := []func(){
		c.selection.set(Selected(a)),
		c.suggestions.set([]address.Address{}),
	}
	c.mu.Unlock()

	c.metrics.Selected()
	run(notify)
}

// OnClearSelection drops the selection.
func (c *Controller) OnClearSelection() {
	c.mu.Lock()
	notify := c.selection.set(Selection{})
	c.mu.Unlock()

	notify()
}

// OnClearSuggestions empties the suggestion list. Lookups still in flight
// become stale.
func (c *Controller) OnClearSuggestions() {
	c.mu.Lock()
	c.invalidateLocked()
	notify := c.suggestions.set([]address.Address{})
	c.mu.Unlock()

	notify()
}

// Wait blocks until every lookup started so far has completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) fetch(gen uint64, query string) {
	defer c.wg.Done()

	res := canadapost.Lookup(c.ctx, c.provider, c.params(query))
	c.complete(gen, query, res)
}

func (c *Controller) complete(gen uint64, query string, res canadapost.Result) {
	c.mu.Lock()

	var notify []func()
	fresh := gen > c.applied
	if fresh {
		c.applied = gen
		notify = append(notify, c.suggestions.set(res.Addresses()))
	}
	if gen == c.issued {
		notify = append(notify, c.loading.set(false))
	}
	c.mu.Unlock()

	logger := c.logger.With("query", query, "generation", gen)
	switch {
	case !fresh:
		c.metrics.StaleDiscarded()
		logger.Debug("discarding stale suggestions")
	case !res.OK():
		// Failures surface as an empty list; there is no error state.
		// The provider logs the failure itself.
		logger.Debug("address lookup failed, showing no suggestions", "error", res.Err)
	}

	run(notify)
}

// invalidateLocked makes every lookup issued so far stale.
func (c *Controller) invalidateLocked() {
	if c.issued > c.applied {
		c.applied = c.issued
	}
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
