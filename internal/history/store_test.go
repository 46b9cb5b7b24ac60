package history_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muxpanel/omnibar/internal/domain/entity"
	"github.com/muxpanel/omnibar/internal/history"
	"github.com/muxpanel/omnibar/internal/logging"
)

func testContext() context.Context {
	return logging.WithContext(context.Background(), zerolog.Nop())
}

func newTestStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	ctx := testContext()
	store := history.NewStore(ctx, history.Options{
		Path:     path,
		Debounce: time.Millisecond,
	})
	t.Cleanup(func() { store.Close(ctx) })
	return store, path
}

func TestRecordVisit_MergesCosmeticVariants(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://example.com", "Example"))
	require.NoError(t, store.RecordVisit(ctx, "https://www.example.com/", ""))
	require.NoError(t, store.RecordVisit(ctx, "https://example.com:443", ""))

	all := store.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, int64(3), all[0].VisitCount)
	assert.Equal(t, "Example", all[0].Title)
}

func TestRecordVisit_RejectsBadURLs(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	assert.Error(t, store.RecordVisit(ctx, "ftp://example.com", ""))
	assert.Error(t, store.RecordVisit(ctx, "about:blank", ""))
	assert.Error(t, store.RecordVisit(ctx, "http://localhost/admin", ""))
	assert.Empty(t, store.All(ctx))
}

func TestRecordTypedNavigation_TracksTypedSignal(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://example.com", "Example"))
	require.NoError(t, store.RecordTypedNavigation(ctx, "https://example.com"))

	all := store.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].VisitCount)
	assert.Equal(t, int64(1), all[0].TypedCount)
	require.NotNil(t, all[0].LastTypedAt)
}

func TestSuggestions_SingleCharRequiresLiteralPrefix(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://github.com", "GitHub"))
	require.NoError(t, store.RecordVisit(ctx, "https://blog.golang.org", "The Go Blog"))
	require.NoError(t, store.RecordVisit(ctx, "https://example.com/gallery", "Pictures"))

	got := store.Suggestions(ctx, "g", 10)
	urls := make([]string, 0, len(got))
	for _, e := range got {
		urls = append(urls, e.URL)
	}
	// "example.com/gallery" only contains "g" mid-URL; it must not appear.
	assert.NotContains(t, urls, "https://example.com/gallery")
	assert.Contains(t, urls, "https://github.com")
}

func TestSuggestions_HostMatchOutranksPathMatch(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://example.com/git-tutorial", "Learning"))
	require.NoError(t, store.RecordVisit(ctx, "https://github.com", "GitHub"))

	got := store.Suggestions(ctx, "git", 10)
	require.Len(t, got, 2)
	assert.Equal(t, "https://github.com", got[0].URL)
}

func TestSuggestions_TokenizedQueries(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://github.com/spf13/viper", "viper config library"))
	require.NoError(t, store.RecordVisit(ctx, "https://github.com/spf13/cobra", "cobra CLI library"))

	got := store.Suggestions(ctx, "viper github", 10)
	require.Len(t, got, 1)
	assert.Equal(t, "https://github.com/spf13/viper", got[0].URL)
}

func TestSuggestions_TypedEntriesOutrankVisited(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://example.com/a", "alpha"))
	require.NoError(t, store.RecordTypedNavigation(ctx, "https://example.com/b"))

	got := store.Suggestions(ctx, "example", 10)
	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/b", got[0].URL)
}

func TestRecentSuggestions_Ordering(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://a.example.com", "a"))
	require.NoError(t, store.RecordVisit(ctx, "https://b.example.com", "b"))
	require.NoError(t, store.RecordTypedNavigation(ctx, "https://c.example.com"))

	got := store.RecentSuggestions(ctx, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "https://c.example.com", got[0].URL, "typed entries sort first")
}

func TestRecentSuggestions_Limit(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://a.example.com", ""))
	require.NoError(t, store.RecordVisit(ctx, "https://b.example.com", ""))

	assert.Len(t, store.RecentSuggestions(ctx, 1), 1)
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "history.json")

	store := history.NewStore(ctx, history.Options{Path: path, Debounce: time.Millisecond})
	require.NoError(t, store.RecordVisit(ctx, "https://example.com", "Example"))
	require.NoError(t, store.RecordVisit(ctx, "https://example.com", ""))
	require.NoError(t, store.RecordTypedNavigation(ctx, "https://go.dev"))
	store.Close(ctx)

	reloaded := history.NewStore(ctx, history.Options{Path: path, Debounce: time.Millisecond})
	defer reloaded.Close(ctx)

	all := reloaded.All(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "https://go.dev", all[0].URL, "ordered by last visited desc")
	assert.Equal(t, int64(1), all[0].TypedCount)
	assert.Equal(t, "https://example.com", all[1].URL)
	assert.Equal(t, int64(2), all[1].VisitCount)
}

func TestLoad_PurgesTLDLessHosts(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "history.json")

	legacy := []*entity.HistoryEntry{
		{ID: 1, URL: "https://example.com", VisitCount: 3, LastVisited: time.Now()},
		{ID: 2, URL: "http://localhost:3000/dev", VisitCount: 9, LastVisited: time.Now()},
		{ID: 3, URL: "https://intranet", VisitCount: 2, LastVisited: time.Now()},
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store := history.NewStore(ctx, history.Options{Path: path, Debounce: time.Millisecond})
	defer store.Close(ctx)

	all := store.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "https://example.com", all[0].URL)
}

func TestLoad_CorruptFileStartsEmpty(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := history.NewStore(ctx, history.Options{Path: path, Debounce: time.Millisecond})
	defer store.Close(ctx)

	assert.Empty(t, store.All(ctx))
}

func TestLegacyMigration_CopiesWhenCanonicalAbsent(t *testing.T) {
	ctx := testContext()
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "legacy", "history.json")
	path := filepath.Join(dir, "history.json")

	entries := []*entity.HistoryEntry{
		{ID: 1, URL: "https://example.com", VisitCount: 1, LastVisited: time.Now()},
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(legacyPath), 0o755))
	require.NoError(t, os.WriteFile(legacyPath, data, 0o644))

	store := history.NewStore(ctx, history.Options{
		Path:       path,
		LegacyPath: legacyPath,
		Debounce:   time.Millisecond,
	})
	defer store.Close(ctx)

	all := store.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "https://example.com", all[0].URL)

	// Copy, not move.
	_, err = os.Stat(legacyPath)
	assert.NoError(t, err)
}

func TestRemoveEntry(t *testing.T) {
	ctx := testContext()
	store, _ := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://example.com/a", ""))

	assert.False(t, store.RemoveEntry(ctx, "https://other.example.com"))
	assert.True(t, store.RemoveEntry(ctx, "https://www.example.com/a"), "normalized key match")
	assert.Empty(t, store.All(ctx))
}

func TestClear_DeletesBackingFile(t *testing.T) {
	ctx := testContext()
	store, path := newTestStore(t)

	require.NoError(t, store.RecordVisit(ctx, "https://example.com", ""))
	store.FlushPendingSaves(ctx)
	_, err := os.Stat(path)
	require.NoError(t, err)

	store.Clear(ctx)
	assert.Empty(t, store.All(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEviction_OldestByRecency(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "history.json")
	store := history.NewStore(ctx, history.Options{
		Path:       path,
		MaxEntries: 2,
		Debounce:   time.Millisecond,
	})
	defer store.Close(ctx)

	require.NoError(t, store.RecordVisit(ctx, "https://one.example.com", ""))
	require.NoError(t, store.RecordVisit(ctx, "https://two.example.com", ""))
	require.NoError(t, store.RecordVisit(ctx, "https://three.example.com", ""))

	all := store.All(ctx)
	require.Len(t, all, 2)
	for _, e := range all {
		assert.NotEqual(t, "https://one.example.com", e.URL, "oldest entry is evicted")
	}
}

func TestFlushPendingSaves_WritesSynchronously(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "history.json")
	// Long debounce: without a flush nothing would hit disk in time.
	store := history.NewStore(ctx, history.Options{Path: path, Debounce: time.Hour})
	defer store.Close(ctx)

	require.NoError(t, store.RecordVisit(ctx, "https://example.com", ""))
	store.FlushPendingSaves(ctx)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted []*entity.HistoryEntry
	require.NoError(t, json.Unmarshal(data, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "https://example.com", persisted[0].URL)
}
