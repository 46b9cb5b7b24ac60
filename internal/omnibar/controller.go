package omnibar

import (
	"context"
	"strings"
	"sync"

	"github.com/muxpanel/omnibar/internal/domain/entity"
	domurl "github.com/muxpanel/omnibar/internal/domain/url"
	"github.com/muxpanel/omnibar/internal/history"
	"github.com/muxpanel/omnibar/internal/logging"
	"github.com/muxpanel/omnibar/internal/remote"
	"github.com/muxpanel/omnibar/internal/suggest"
)

// TabSnapshotProvider hands the aggregator a read-only snapshot of open
// browser surfaces, fetched once per refresh.
type TabSnapshotProvider interface {
	OpenTabs() []entity.OpenTab
}

// TabSnapshotFunc adapts a function to TabSnapshotProvider.
type TabSnapshotFunc func() []entity.OpenTab

// OpenTabs implements TabSnapshotProvider.
func (f TabSnapshotFunc) OpenTabs() []entity.OpenTab { return f() }

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	// Engine names the user's search engine.
	Engine string
	// SuggestionsEnabled gates remote autocomplete.
	SuggestionsEnabled bool
	// Limit caps the merged list; 0 means suggest.DefaultLimit.
	Limit int
	// Resolver guesses navigability; nil means domurl.DefaultResolver.
	Resolver domurl.Resolver
	// Tabs supplies the open-surface snapshot; nil means no tab rows.
	Tabs TabSnapshotProvider
}

// Controller is the single logical owner of omnibar state. All reducer
// transitions and refreshes run sequentially under its lock; remote
// fetches run in the background keyed to the query that triggered them
// and are cancelled by superseding keystrokes.
type Controller struct {
	store   *history.Store
	fetcher *remote.Fetcher
	opts    ControllerOptions

	mu          sync.Mutex
	state       State
	fetchCancel context.CancelFunc

	// OnChange, when set, observes every state transition.
	OnChange func(State)
}

// NewController wires the engine together. store may not be nil; fetcher
// may be nil to disable remote suggestions entirely.
func NewController(store *history.Store, fetcher *remote.Fetcher, opts ControllerOptions) *Controller {
	if opts.Resolver == nil {
		opts.Resolver = domurl.DefaultResolver
	}
	if opts.Limit <= 0 {
		opts.Limit = suggest.DefaultLimit
	}
	return &Controller{store: store, fetcher: fetcher, opts: opts}
}

// State returns the current omnibar state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies one event and executes any refresh effect. SelectAll
// and blur effects are returned for the caller's widget layer.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (State, Effects) {
	c.mu.Lock()
	state, eff := Reduce(c.state, ev)
	c.state = state
	c.mu.Unlock()

	c.notify(state)

	if eff.ShouldRefreshSuggestions {
		c.refresh(ctx, state.Buffer)
	}
	return state, eff
}

func (c *Controller) notify(state State) {
	if c.OnChange != nil {
		c.OnChange(state)
	}
}

// refresh rebuilds the suggestion list for the buffer. Local sources are
// pulled synchronously so suggestions render immediately regardless of
// remote outcome; the remote fetch races in the background and merges in
// only if its query still matches the buffer when it completes.
func (c *Controller) refresh(ctx context.Context, buffer string) {
	query := strings.TrimSpace(buffer)

	c.mu.Lock()
	if c.fetchCancel != nil {
		// Supersede the stale fetch.
		c.fetchCancel()
		c.fetchCancel = nil
	}
	c.mu.Unlock()

	in := c.buildInput(ctx, query, nil)
	c.applySuggestions(query, suggest.Build(in))

	if !c.opts.SuggestionsEnabled || c.fetcher == nil || query == "" {
		return
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.fetchCancel = cancel
	c.mu.Unlock()

	go func() {
		defer cancel()
		results := c.fetcher.Fetch(fetchCtx, c.opts.Engine, query)
		if len(results) == 0 {
			return
		}

		// Re-validate against the still-current query: a cancellation
		// flag alone can lose the race with a superseding keystroke.
		c.mu.Lock()
		stale := strings.TrimSpace(c.state.Buffer) != query
		c.mu.Unlock()
		if stale {
			logging.FromContext(logging.WithQuery(ctx, query)).Debug().Msg("dropping stale remote suggestions")
			return
		}

		in := c.buildInput(ctx, query, results)
		c.applySuggestions(query, suggest.Build(in))
	}()
}

func (c *Controller) buildInput(ctx context.Context, query string, remoteQueries []string) suggest.Input {
	var entries []*entity.HistoryEntry
	if c.store != nil {
		entries = c.store.Suggestions(ctx, query, c.opts.Limit)
	}

	var tabs []entity.OpenTab
	if c.opts.Tabs != nil {
		tabs = c.opts.Tabs.OpenTabs()
	}

	var resolved string
	if query != "" {
		if url, ok := c.opts.Resolver(query); ok {
			resolved = url
		}
	}

	return suggest.Input{
		Query:         query,
		Engine:        c.opts.Engine,
		History:       entries,
		OpenTabs:      tabs,
		RemoteQueries: remoteQueries,
		ResolvedURL:   resolved,
		Limit:         c.opts.Limit,
	}
}

// applySuggestions feeds a SuggestionsUpdated transition, dropping the
// result if the buffer moved on while sources were being gathered.
func (c *Controller) applySuggestions(query string, list []entity.Suggestion) {
	c.mu.Lock()
	if strings.TrimSpace(c.state.Buffer) != query {
		c.mu.Unlock()
		return
	}
	state, _ := Reduce(c.state, SuggestionsUpdated{Suggestions: list})
	c.state = state
	c.mu.Unlock()

	c.notify(state)
}

// RecordNavigation records the outcome of committing the omnibar: typed
// navigations feed the typed-frequency ranking signal.
func (c *Controller) RecordNavigation(ctx context.Context, url string) {
	if c.store == nil {
		return
	}
	if err := c.store.RecordTypedNavigation(ctx, url); err != nil {
		logging.FromContext(logging.WithURL(ctx, url)).Debug().Err(err).Msg("typed navigation not recorded")
	}
}
