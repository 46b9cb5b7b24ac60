// Package history implements the omnibar's visit-history store: a
// size-bounded, frecency-ranked record of visited URLs with debounced
// single-file JSON persistence.
package history

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/muxpanel/omnibar/internal/domain/entity"
	domurl "github.com/muxpanel/omnibar/internal/domain/url"
	"github.com/muxpanel/omnibar/internal/logging"
)

const (
	// DefaultMaxEntries bounds the store; oldest-by-recency entries are
	// evicted beyond it.
	DefaultMaxEntries = 5000
	// DefaultDebounce is the persistence coalescing window.
	DefaultDebounce = 120 * time.Millisecond

	logURLMaxLen = 60
)

// Options configures a Store.
type Options struct {
	// Path is the canonical history file location.
	Path string
	// LegacyPath, when set, is copied to Path once if Path is absent.
	LegacyPath string
	// MaxEntries overrides DefaultMaxEntries when > 0.
	MaxEntries int
	// Debounce overrides DefaultDebounce when > 0.
	Debounce time.Duration
}

// Store is the durable history record. The in-memory list is single-owner
// and mutex-guarded; the background writer only ever sees immutable
// snapshots taken at schedule time.
type Store struct {
	opts Options

	mu      sync.Mutex
	loaded  bool
	entries []*entity.HistoryEntry // sorted LastVisited desc
	byKey   map[string]*entity.HistoryEntry
	nextID  int64

	persist *persister
}

// NewStore creates a Store. ctx bounds the lifetime of the background
// persistence goroutine.
func NewStore(ctx context.Context, opts Options) *Store {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Store{
		opts:    opts,
		byKey:   make(map[string]*entity.HistoryEntry),
		persist: newPersister(ctx, opts.Path, opts.Debounce),
	}
}

// Close flushes pending saves and stops the background writer.
func (s *Store) Close(ctx context.Context) {
	s.FlushPendingSaves(ctx)
	s.persist.close()
}

// RecordVisit merges a passive visit into the store. Non-http(s) URLs and
// hosts without a TLD dot are rejected.
func (s *Store) RecordVisit(ctx context.Context, url, title string) error {
	return s.record(ctx, url, title, false)
}

// RecordTypedNavigation merges an explicit address-bar navigation,
// additionally bumping the typed counters that weight deliberate entries
// above incidental link clicks.
func (s *Store) RecordTypedNavigation(ctx context.Context, url string) error {
	return s.record(ctx, url, "", true)
}

func (s *Store) record(ctx context.Context, url, title string, typed bool) error {
	log := logging.FromContext(ctx)

	key, err := domurl.NormalizeKey(url)
	if err != nil {
		return fmt.Errorf("history: rejecting %q: %w", logging.TruncateURL(url, logURLMaxLen), err)
	}
	if !domurl.HostHasTLD(domurl.Host(url)) {
		return fmt.Errorf("history: rejecting %q: host has no TLD", logging.TruncateURL(url, logURLMaxLen))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	entry, ok := s.byKey[key]
	if ok {
		if typed {
			entry.IncrementTyped()
		} else {
			entry.IncrementVisit()
		}
		if title != "" {
			entry.Title = title
		}
	} else {
		entry = entity.NewHistoryEntry(url, title)
		if typed {
			entry.TypedCount = 1
			now := entry.LastVisited
			entry.LastTypedAt = &now
		}
		s.nextID++
		entry.ID = s.nextID
		s.entries = append([]*entity.HistoryEntry{entry}, s.entries...)
		s.byKey[key] = entry
	}

	s.sortByRecencyLocked()
	s.trimLocked()
	s.persist.schedule(s.snapshotLocked())

	log.Debug().
		Str("url", logging.TruncateURL(url, logURLMaxLen)).
		Bool("typed", typed).
		Bool("merged", ok).
		Msg("history visit recorded")
	return nil
}

// Suggestions returns scored local matches for the query, capped at limit.
// An empty query falls back to the default recent ranking.
func (s *Store) Suggestions(ctx context.Context, query string, limit int) []*entity.HistoryEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.RecentSuggestions(ctx, limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	ranked := rank(s.entries, query, time.Now())
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// RecentSuggestions is the empty-query ranking: typed count, then typed
// recency, then visit recency, then visit count, then URL. Deterministic.
func (s *Store) RecentSuggestions(ctx context.Context, limit int) []*entity.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	out := make([]*entity.HistoryEntry, len(s.entries))
	copy(out, s.entries)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TypedCount != b.TypedCount {
			return a.TypedCount > b.TypedCount
		}
		at, bt := typedAt(a), typedAt(b)
		if !at.Equal(bt) {
			return at.After(bt)
		}
		if !a.LastVisited.Equal(b.LastVisited) {
			return a.LastVisited.After(b.LastVisited)
		}
		if a.VisitCount != b.VisitCount {
			return a.VisitCount > b.VisitCount
		}
		return a.URL < b.URL
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func typedAt(e *entity.HistoryEntry) time.Time {
	if e.LastTypedAt == nil {
		return time.Time{}
	}
	return *e.LastTypedAt
}

// All returns every entry, most recently visited first.
func (s *Store) All(ctx context.Context) []*entity.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	out := make([]*entity.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// RemoveEntry hard-removes the entry matching the URL string (exact or by
// normalized key). Returns whether anything was removed.
func (s *Store) RemoveEntry(ctx context.Context, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	idx := -1
	for i, e := range s.entries {
		if e.URL == url {
			idx = i
			break
		}
	}
	if idx == -1 {
		if key, err := domurl.NormalizeKey(url); err == nil {
			for i, e := range s.entries {
				if k, err := domurl.NormalizeKey(e.URL); err == nil && k == key {
					idx = i
					break
				}
			}
		}
	}
	if idx == -1 {
		return false
	}

	removed := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	if key, err := domurl.NormalizeKey(removed.URL); err == nil {
		delete(s.byKey, key)
	}
	s.persist.schedule(s.snapshotLocked())
	return true
}

// Clear cancels pending persistence, deletes the backing file, and empties
// the in-memory set.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persist.cancel()
	s.entries = nil
	s.byKey = make(map[string]*entity.HistoryEntry)
	s.loaded = true

	if err := os.Remove(s.opts.Path); err != nil && !os.IsNotExist(err) {
		logging.FromContext(ctx).Debug().Err(err).Str("path", s.opts.Path).Msg("history clear: remove failed")
	}
}

// FlushPendingSaves forces a synchronous write of the latest pending
// snapshot. Used at shutdown.
func (s *Store) FlushPendingSaves(ctx context.Context) {
	s.persist.flush(ctx)
}

// ensureLoadedLocked lazily loads the persisted set on first access.
// Read or decode failures degrade to an empty store. Malformed entries
// (TLD-less hosts, empty URLs) are purged and the cleaned set re-persisted.
func (s *Store) ensureLoadedLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	log := logging.FromContext(ctx)
	migrateLegacy(ctx, s.opts.LegacyPath, s.opts.Path)

	raw, err := readEntries(s.opts.Path)
	if err != nil {
		log.Debug().Err(err).Str("path", s.opts.Path).Msg("history load failed, starting empty")
		return
	}

	dirty := false
	for _, entry := range raw {
		if entry == nil || entry.URL == "" {
			dirty = true
			continue
		}
		key, err := domurl.NormalizeKey(entry.URL)
		if err != nil || !domurl.HostHasTLD(domurl.Host(entry.URL)) {
			dirty = true
			continue
		}
		if existing, dup := s.byKey[key]; dup {
			// Legacy duplicates collapse into one entry.
			existing.VisitCount += entry.VisitCount
			existing.TypedCount += entry.TypedCount
			if entry.LastVisited.After(existing.LastVisited) {
				existing.LastVisited = entry.LastVisited
			}
			dirty = true
			continue
		}
		if entry.VisitCount < 1 {
			entry.VisitCount = 1
			dirty = true
		}
		s.nextID++
		entry.ID = s.nextID
		s.byKey[key] = entry
		s.entries = append(s.entries, entry)
	}

	s.sortByRecencyLocked()
	if len(s.entries) > s.opts.MaxEntries {
		s.trimLocked()
		dirty = true
	}

	log.Debug().Int("entries", len(s.entries)).Bool("cleaned", dirty).Msg("history loaded")
	if dirty {
		s.persist.schedule(s.snapshotLocked())
	}
}

func (s *Store) sortByRecencyLocked() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].LastVisited.After(s.entries[j].LastVisited)
	})
}

// trimLocked evicts oldest-by-recency entries beyond the cap. Entries are
// already sorted LastVisited desc, so eviction drops the tail.
func (s *Store) trimLocked() {
	if len(s.entries) <= s.opts.MaxEntries {
		return
	}
	for _, evicted := range s.entries[s.opts.MaxEntries:] {
		if key, err := domurl.NormalizeKey(evicted.URL); err == nil {
			delete(s.byKey, key)
		}
	}
	s.entries = s.entries[:s.opts.MaxEntries]
}

// snapshotLocked deep-copies the current entries for the persister so the
// background write never observes live state.
func (s *Store) snapshotLocked() []*entity.HistoryEntry {
	snapshot := make([]*entity.HistoryEntry, len(s.entries))
	for i, e := range s.entries {
		snapshot[i] = e.Clone()
	}
	return snapshot
}
