// Package history keeps a bounded, expiring list of parsed-file snapshots so
// a user can resume earlier work.
//
// The list is stored as one JSON array under a namespace key in a KV backend.
// The store is best effort: read and write failures, including corrupt
// stored JSON, are logged as persistence warnings and otherwise ignored.
// Editing never depends on the history succeeding.
package history

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/LeadParser/internal/logging"
	"github.com/JonMunkholm/LeadParser/internal/model"
)

const (
	DefaultNamespace  = "excel-parser-history"
	DefaultTTL        = 30 * 24 * time.Hour
	DefaultMaxEntries = 25
)

var persistenceWarnings = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "leadparser_history_persistence_warnings_total",
		Help: "History read or write failures that were ignored.",
	},
	[]string{"op"},
)

// Entry is one saved snapshot.
type Entry struct {
	ID           string                   `json:"id"`
	FileName     string                   `json:"fileName"`
	FileSize     int64                    `json:"fileSize"`
	TotalRows    int                      `json:"totalRows"`
	TotalErrors  int                      `json:"totalErrors"`
	AutoFixCount int                      `json:"autoFixCount"`
	SheetCount   int                      `json:"sheetCount"`
	SheetNames   []string                 `json:"sheetNames"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
	ExpiresAt    time.Time                `json:"expiresAt"`
	File         *model.ParsedFile        `json:"parsedFile"`
	Summary      *model.ValidationSummary `json:"validationSummary,omitempty"`
}

// Summary is an Entry without its snapshot payload.
type Summary struct {
	ID           string                   `json:"id"`
	FileName     string                   `json:"fileName"`
	FileSize     int64                    `json:"fileSize"`
	TotalRows    int                      `json:"totalRows"`
	TotalErrors  int                      `json:"totalErrors"`
	AutoFixCount int                      `json:"autoFixCount"`
	SheetCount   int                      `json:"sheetCount"`
	SheetNames   []string                 `json:"sheetNames"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
	ExpiresAt    time.Time                `json:"expiresAt"`
	Summary      *model.ValidationSummary `json:"validationSummary,omitempty"`
}

func (e Entry) summary() Summary {
	return Summary{
		ID:           e.ID,
		FileName:     e.FileName,
		FileSize:     e.FileSize,
		TotalRows:    e.TotalRows,
		TotalErrors:  e.TotalErrors,
		AutoFixCount: e.AutoFixCount,
		SheetCount:   e.SheetCount,
		SheetNames:   e.SheetNames,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		ExpiresAt:    e.ExpiresAt,
		Summary:      e.Summary,
	}
}

// SaveInput is the data written by Save. An empty ID creates a new entry.
type SaveInput struct {
	ID           string
	File         *model.ParsedFile
	Summary      *model.ValidationSummary
	TotalErrors  int
	AutoFixCount int
}

// Store is the snapshot history.
type Store struct {
	kv         KV
	namespace  string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	newID      func() string

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.namespace = ns
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates a Store over kv.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		namespace:  DefaultNamespace,
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes a snapshot and returns its id. Saving an existing id keeps its
// CreatedAt. Every save refreshes UpdatedAt and ExpiresAt and trims the
// list to MaxEntries, evicting the oldest other entries by UpdatedAt. The id
// is returned even when the write fails.
func (s *Store) Save(ctx context.Context, in SaveInput) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entries := s.load(ctx)

	id := in.ID
	created := now
	if id == "" {
		id = s.newID()
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID == id {
			created = e.CreatedAt
			continue
		}
		if s.expired(e, now) {
			continue
		}
		kept = append(kept, e)
	}

	entry := Entry{
		ID:           id,
		TotalErrors:  in.TotalErrors,
		AutoFixCount: in.AutoFixCount,
		CreatedAt:    created,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
		File:         in.File,
		Summary:      in.Summary,
	}
	if in.File != nil {
		entry.FileName = in.File.FileName
		entry.FileSize = in.File.FileSize
		entry.TotalRows = in.File.TotalRows
		entry.SheetCount = len(in.File.Sheets)
		entry.SheetNames = make([]string, len(in.File.Sheets))
		for i, sh := range in.File.Sheets {
			entry.SheetNames[i] = sh.Name
		}
	}

	kept = append(s.capacity(kept, s.maxEntries-1), entry)
	s.write(ctx, kept)
	return id
}

// List returns entry summaries newest first, after removing expired entries.
func (s *Store) List(ctx context.Context) []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.flushLocked(ctx)
	sortNewestFirst(entries)

	out := make([]Summary, len(entries))
	for i, e := range entries {
		out[i] = e.summary()
	}
	return out
}

// Entry returns the full entry for id. Expired entries are not returned.
func (s *Store) Entry(ctx context.Context, id string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.flushLocked(ctx) {
		if e.ID == id {
			e := e
			return &e, true
		}
	}
	return nil, false
}

// Get returns the snapshot saved under id.
func (s *Store) Get(ctx context.Context, id string) (*model.ParsedFile, bool) {
	e, ok := s.Entry(ctx, id)
	if !ok || e.File == nil {
		return nil, false
	}
	return e.File, true
}

// Delete removes id. Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) != len(entries) {
		s.write(ctx, kept)
	}
}

// Flush removes expired entries. It is safe to call at any time.
func (s *Store) Flush(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.load(ctx))
	return before - len(s.flushLocked(ctx))
}

// Clear removes the whole history.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.namespace); err != nil {
		s.warn(ctx, "clear", err)
	}
}

// flushLocked loads, drops expired entries, writes back if anything changed
// and returns the live entries.
func (s *Store) flushLocked(ctx context.Context) []Entry {
	now := s.now()
	entries := s.load(ctx)
	live := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !s.expired(e, now) {
			live = append(live, e)
		}
	}
	if len(live) != len(entries) {
		s.write(ctx, live)
	}
	return live
}

func (s *Store) expired(e Entry, now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// capacity keeps the newest n entries by UpdatedAt. Save makes room this way
// before appending, so the entry being saved is never the one evicted.
func (s *Store) capacity(entries []Entry, n int) []Entry {
	if len(entries) <= n {
		return entries
	}
	sortNewestFirst(entries)
	return entries[:n]
}

func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
}

func (s *Store) load(ctx context.Context) []Entry {
	data, ok, err := s.kv.Get(ctx, s.namespace)
	if err != nil {
		s.warn(ctx, "read", err)
		return nil
	}
	if !ok || len(data) == 0 {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.warn(ctx, "decode", err)
		return nil
	}
	return entries
}

func (s *Store) write(ctx context.Context, entries []Entry) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		s.warn(ctx, "encode", err)
		return
	}
	if err := s.kv.Set(ctx, s.namespace, data); err != nil {
		s.warn(ctx, "write", err)
	}
}

func (s *Store) warn(ctx context.Context, op string, err error) {
	persistenceWarnings.WithLabelValues(op).Inc()
	logging.FromContext(ctx).Warn("history persistence warning",
		"op", op,
		"namespace", s.namespace,
		"error", err,
	)
}
