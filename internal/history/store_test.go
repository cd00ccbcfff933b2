package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/LeadParser/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
}

func newTestStore(kv KV, clock *fakeClock, opts ...Option) *Store {
	opts = append([]Option{WithClock(clock.Now), WithIDGenerator(sequentialIDs())}, opts...)
	return NewStore(kv, opts...)
}

func sampleFile(name string) *model.ParsedFile {
	return &model.ParsedFile{
		FileName: name,
		FileSize: 2048,
		Sheets: []model.Sheet{
			{Name: "Leads", Rows: []model.Row{model.NewRow("ID", "A1")}, RowCount: 1},
			{Name: "Archive", Rows: []model.Row{}},
		},
		TotalRows:   1,
		TotalSheets: 2,
	}
}

// =============================================================================
// Save / Get / List
// =============================================================================

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock)

	id := store.Save(ctx, SaveInput{File: sampleFile("leads.xlsx"), TotalErrors: 3, AutoFixCount: 2})
	require.Equal(t, "id-01", id)

	entry, ok := store.Entry(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "leads.xlsx", entry.FileName)
	assert.Equal(t, int64(2048), entry.FileSize)
	assert.Equal(t, 2, entry.SheetCount)
	assert.Equal(t, []string{"Leads", "Archive"}, entry.SheetNames)
	assert.Equal(t, 3, entry.TotalErrors)
	assert.Equal(t, 2, entry.AutoFixCount)
	assert.True(t, entry.CreatedAt.Equal(clock.Now()))
	assert.True(t, entry.ExpiresAt.Equal(clock.Now().Add(DefaultTTL)))

	file, ok := store.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "A1", file.Sheets[0].Rows[0].Value("ID"))

	_, ok = store.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestStore_ResaveKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock)

	id := store.Save(ctx, SaveInput{File: sampleFile("a.xlsx")})
	created := clock.Now()

	clock.Advance(time.Hour)
	again := store.Save(ctx, SaveInput{ID: id, File: sampleFile("a.xlsx"), TotalErrors: 7})
	assert.Equal(t, id, again)

	list := store.List(ctx)
	require.Len(t, list, 1)
	assert.True(t, list[0].CreatedAt.Equal(created))
	assert.True(t, list[0].UpdatedAt.Equal(clock.Now()))
	assert.Equal(t, 7, list[0].TotalErrors)
}

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock)

	first := store.Save(ctx, SaveInput{File: sampleFile("first.xlsx")})
	clock.Advance(time.Minute)
	second := store.Save(ctx, SaveInput{File: sampleFile("second.xlsx")})
	clock.Advance(time.Minute)
	store.Save(ctx, SaveInput{ID: first, File: sampleFile("first.xlsx")})

	list := store.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, second, list[1].ID)
}

// =============================================================================
// Capacity and expiry
// =============================================================================

func TestStore_EvictsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock, WithMaxEntries(3))

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, store.Save(ctx, SaveInput{File: sampleFile(fmt.Sprintf("f%d.xlsx", i))}))
		clock.Advance(time.Second)
	}

	list := store.List(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[4], ids[3], ids[2]}, []string{list[0].ID, list[1].ID, list[2].ID})

	_, ok := store.Get(ctx, ids[0])
	assert.False(t, ok, "oldest entry should be evicted")
}

func TestStore_SameTimestampKeepsLatestSave(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock, WithMaxEntries(2))

	for i := 0; i < 3; i++ {
		id := store.Save(ctx, SaveInput{File: sampleFile(fmt.Sprintf("f%d.xlsx", i))})

		_, ok := store.Get(ctx, id)
		assert.True(t, ok, "save %d: returned id %s is not stored", i, id)
	}

	list := store.List(ctx)
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	assert.Contains(t, ids, "id-03")
}

func TestStore_CapacityNeverExceeded(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock)

	for i := 0; i < DefaultMaxEntries*2; i++ {
		store.Save(ctx, SaveInput{File: sampleFile("f.xlsx")})
		clock.Advance(time.Millisecond)
		assert.LessOrEqual(t, len(store.List(ctx)), DefaultMaxEntries)
	}
}

func TestStore_ExpiredEntriesDisappear(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock, WithTTL(24*time.Hour))

	old := store.Save(ctx, SaveInput{File: sampleFile("old.xlsx")})
	clock.Advance(12 * time.Hour)
	fresh := store.Save(ctx, SaveInput{File: sampleFile("fresh.xlsx")})

	clock.Advance(12 * time.Hour)
	_, ok := store.Get(ctx, old)
	assert.True(t, ok, "entry is still live exactly at its expiry instant")

	clock.Advance(time.Second)
	_, ok = store.Get(ctx, old)
	assert.False(t, ok)

	list := store.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, fresh, list[0].ID)
}

func TestStore_Flush(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock, WithTTL(time.Hour))

	store.Save(ctx, SaveInput{File: sampleFile("a.xlsx")})
	store.Save(ctx, SaveInput{File: sampleFile("b.xlsx")})
	assert.Equal(t, 0, store.Flush(ctx))

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 2, store.Flush(ctx))
	assert.Empty(t, store.List(ctx))
}

// =============================================================================
// Delete / Clear
// =============================================================================

func TestStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock)

	a := store.Save(ctx, SaveInput{File: sampleFile("a.xlsx")})
	b := store.Save(ctx, SaveInput{File: sampleFile("b.xlsx")})

	store.Delete(ctx, a)
	store.Delete(ctx, "unknown")

	list := store.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, b, list[0].ID)

	store.Clear(ctx)
	assert.Empty(t, store.List(ctx))
}

// =============================================================================
// Persistence failures
// =============================================================================

type failingKV struct{}

var errUnavailable = errors.New("backend unavailable")

func (failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errUnavailable }
func (failingKV) Set(context.Context, string, []byte) error          { return errUnavailable }
func (failingKV) Delete(context.Context, string) error               { return errUnavailable }

func TestStore_FailingBackendIsBestEffort(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(failingKV{}, newFakeClock())

	id := store.Save(ctx, SaveInput{File: sampleFile("a.xlsx")})
	assert.Equal(t, "id-01", id, "id is returned even when the write fails")

	assert.Empty(t, store.List(ctx))
	_, ok := store.Get(ctx, id)
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		store.Delete(ctx, id)
		store.Clear(ctx)
		store.Flush(ctx)
	})
}

func TestStore_CorruptDataReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, DefaultNamespace, []byte("{not json")))

	store := newTestStore(kv, newFakeClock())
	assert.Empty(t, store.List(ctx))

	id := store.Save(ctx, SaveInput{File: sampleFile("a.xlsx")})
	list := store.List(ctx)
	require.Len(t, list, 1, "a save replaces corrupt data")
	assert.Equal(t, id, list[0].ID)
}

func TestStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	clock := newFakeClock()

	alpha := newTestStore(kv, clock, WithNamespace("alpha"))
	beta := newTestStore(kv, clock, WithNamespace("beta"))

	alpha.Save(ctx, SaveInput{File: sampleFile("a.xlsx")})
	assert.Len(t, alpha.List(ctx), 1)
	assert.Empty(t, beta.List(ctx))
}

// =============================================================================
// Backends
// =============================================================================

func TestFileKV(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	_, ok, err := kv.Get(ctx, "excel-parser-history")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "excel-parser-history", []byte(`[]`)))
	require.NoError(t, kv.Set(ctx, "excel-parser-history", []byte(`[1]`)))

	data, ok, err := kv.Get(ctx, "excel-parser-history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1]`, string(data))

	require.NoError(t, kv.Delete(ctx, "excel-parser-history"))
	require.NoError(t, kv.Delete(ctx, "excel-parser-history"), "deleting twice is not an error")

	_, ok, err = kv.Get(ctx, "excel-parser-history")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKV_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	clock := newFakeClock()

	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	id := newTestStore(kv, clock).Save(ctx, SaveInput{File: sampleFile("leads.xlsx")})

	reopened, err := NewFileKV(dir)
	require.NoError(t, err)
	file, ok := newTestStore(reopened, clock).Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "leads.xlsx", file.FileName)
	assert.Equal(t, []string{"ID"}, file.Sheets[0].Rows[0].Keys())
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	buf := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, _, _ := kv.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestStartFlushScheduler_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := newFakeClock()
	store := newTestStore(NewMemoryKV(), clock, WithTTL(time.Minute))

	store.Save(ctx, SaveInput{File: sampleFile("a.xlsx")})
	clock.Advance(time.Hour)

	done := make(chan struct{})
	go func() {
		store.StartFlushScheduler(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		data, _, _ := store.kv.Get(context.Background(), DefaultNamespace)
		return string(data) == "[]"
	}, time.Second, 10*time.Millisecond, "initial flush should run immediately")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
