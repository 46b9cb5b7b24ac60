// Package remote fetches search-engine autocomplete suggestions. Fetches
// are concurrent, cancellable and timeout-bounded; every failure mode
// degrades to an empty result, never an error.
package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/muxpanel/omnibar/internal/logging"
)

const (
	// branchTimeout bounds each engine request independently so one slow
	// engine never blocks the others.
	branchTimeout = 650 * time.Millisecond

	// OverrideEnv holds a JSON string array that short-circuits all
	// network access, for deterministic tests and offline use.
	OverrideEnv = "OMNIBAR_SUGGEST_OVERRIDE"
)

// Engine describes one autocomplete endpoint. SuggestURL carries a "%s"
// placeholder for the escaped query.
type Engine struct {
	Name       string
	SuggestURL string
	Format     WireFormat
}

// DefaultEngineName is raced across all known engines instead of hitting
// a single endpoint.
const DefaultEngineName = "default"

// DefaultEngines are the built-in endpoints, covering both wire formats.
func DefaultEngines() []Engine {
	return []Engine{
		{
			Name:       "startpage",
			SuggestURL: "https://www.startpage.com/suggestions?q=%s&format=opensearch",
			Format:     FormatPrefixedArray,
		},
		{
			Name:       "duckduckgo",
			SuggestURL: "https://duckduckgo.com/ac/?q=%s",
			Format:     FormatPhraseObjects,
		},
		{
			Name:       "brave",
			SuggestURL: "https://search.brave.com/api/suggest?q=%s",
			Format:     FormatPrefixedArray,
		},
	}
}

// Fetcher races suggest requests across engines.
type Fetcher struct {
	client   *http.Client
	engines  []Engine
	timeout  time.Duration
	override []string // non-nil short-circuits the network entirely
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithClient swaps the HTTP client.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithEngines replaces the engine set.
func WithEngines(engines []Engine) Option {
	return func(f *Fetcher) { f.engines = engines }
}

// WithTimeout overrides the per-branch timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithOverride forces deterministic results, bypassing the network.
func WithOverride(results []string) Option {
	return func(f *Fetcher) { f.override = results }
}

// NewFetcher creates a Fetcher. If OMNIBAR_SUGGEST_OVERRIDE is set to a
// JSON string array, it becomes a standing override.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{},
		engines: DefaultEngines(),
		timeout: branchTimeout,
	}
	if raw := os.Getenv(OverrideEnv); raw != "" {
		var override []string
		if err := json.Unmarshal([]byte(raw), &override); err == nil {
			f.override = override
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns remote suggestions for the query. A blank query returns
// nil. The override, when present, is returned verbatim before any
// network access. The default engine races every known engine and the
// first non-empty result wins, cancelling the rest; a named engine hits
// only its own endpoint. All failures yield nil.
func (f *Fetcher) Fetch(ctx context.Context, engineName, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if f.override != nil {
		out := make([]string, len(f.override))
		copy(out, f.override)
		return out
	}

	engines := f.selectEngines(engineName)
	if len(engines) == 0 {
		return nil
	}
	if len(engines) == 1 {
		return f.fetchOne(ctx, engines[0], query)
	}
	return f.race(ctx, engines, query)
}

func (f *Fetcher) selectEngines(name string) []Engine {
	if name == "" || name == DefaultEngineName {
		return f.engines
	}
	for _, eng := range f.engines {
		if eng.Name == name {
			return []Engine{eng}
		}
	}
	// Unknown engine name: fall back to the race.
	return f.engines
}

// race queries all engines concurrently. First-success, not
// first-completion: an engine finishing early with an empty result does
// not win, and an all-empty race resolves to nil rather than hanging.
func (f *Fetcher) race(ctx context.Context, engines []Engine, query string) []string {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan []string, len(engines))
	g, branchCtx := errgroup.WithContext(raceCtx)
	for _, eng := range engines {
		eng := eng
		g.Go(func() error {
			results <- f.fetchOne(branchCtx, eng, query)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	for r := range results {
		if len(r) > 0 {
			cancel()
			return r
		}
	}
	return nil
}

// fetchOne performs a single bounded request. Transport, status, and
// parse failures all collapse to nil.
func (f *Fetcher) fetchOne(ctx context.Context, engine Engine, query string) []string {
	log := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	url := strings.Replace(engine.SuggestURL, "%s", neturl.QueryEscape(query), 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("engine", engine.Name).Msg("suggest fetch failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Str("engine", engine.Name).Msg("suggest fetch non-OK")
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	phrases := decode(engine.Format, body)
	log.Debug().Str("engine", engine.Name).Int("count", len(phrases)).Msg("suggest fetch done")
	return phrases
}
