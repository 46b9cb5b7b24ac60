package history

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/muxpanel/omnibar/internal/domain/entity"
	"github.com/muxpanel/omnibar/internal/logging"
)

const filePerm = 0o644

// persister debounces history writes. There is no queue: mutations replace
// a single "latest pending snapshot" slot and one long-lived goroutine
// wakes on a timer and writes whatever is newest, so write bursts coalesce
// into one flush per debounce window and stale snapshots are never written.
type persister struct {
	path     string
	debounce time.Duration

	mu      sync.Mutex
	pending []*entity.HistoryEntry // nil when nothing is scheduled
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

func newPersister(ctx context.Context, path string, debounce time.Duration) *persister {
	p := &persister{
		path:     path,
		debounce: debounce,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

func (p *persister) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-p.wake:
			if !ok {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.debounce):
		}

		p.mu.Lock()
		snapshot := p.pending
		p.pending = nil
		p.mu.Unlock()

		if snapshot != nil {
			if err := writeEntries(p.path, snapshot); err != nil {
				logging.FromContext(ctx).Debug().Err(err).Str("path", p.path).Msg("history persist failed")
			}
		}
	}
}

// schedule replaces the pending snapshot, superseding any unwritten one.
func (p *persister) schedule(snapshot []*entity.HistoryEntry) {
	p.mu.Lock()
	p.pending = snapshot
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// cancel drops any scheduled-but-unwritten snapshot.
func (p *persister) cancel() {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
}

// flush synchronously writes the pending snapshot, if any.
func (p *persister) flush(ctx context.Context) {
	p.mu.Lock()
	snapshot := p.pending
	p.pending = nil
	p.mu.Unlock()

	if snapshot == nil {
		return
	}
	if err := writeEntries(p.path, snapshot); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Str("path", p.path).Msg("history flush failed")
	}
}

func (p *persister) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.wake)
	}
	p.mu.Unlock()
	<-p.done
}

// writeEntries serializes the entries to one JSON file atomically:
// write to a temp file in the same directory, then rename over the target.
func writeEntries(path string, entries []*entity.HistoryEntry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// readEntries loads the persisted JSON array. A missing file yields an
// empty set; decode failures surface as errors for the caller to swallow.
func readEntries(path string) ([]*entity.HistoryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []*entity.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// migrateLegacy copies the legacy namespaced history file to the canonical
// path if the canonical path does not exist yet. One-time, copy not move.
func migrateLegacy(ctx context.Context, legacyPath, path string) {
	if legacyPath == "" || legacyPath == path {
		return
	}
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return
	}
	src, err := os.Open(legacyPath)
	if err != nil {
		return
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("legacy history migration failed")
		return
	}
	logging.FromContext(ctx).Info().Str("from", legacyPath).Str("to", path).Msg("migrated legacy history file")
}
