package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/LeadParser/internal/autofix"
	"github.com/JonMunkholm/LeadParser/internal/history"
	"github.com/JonMunkholm/LeadParser/internal/logging"
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
	"github.com/JonMunkholm/LeadParser/internal/validation"
	"github.com/JonMunkholm/LeadParser/internal/workbook"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSavedUploadNotFound = errors.New("saved upload not found")
	ErrRowOutOfRange       = errors.New("row out of range")
	ErrSheetOutOfRange     = errors.New("sheet out of range")
	ErrUnknownField        = errors.New("unknown field")
	ErrStaleValidation     = errors.New("validation superseded by a newer edit")
	ErrNoFile              = errors.New("no file provided")
	ErrInvalidRequest      = errors.New("invalid request")
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "leadparser_sessions_active",
		Help: "Editing sessions currently held in memory.",
	})
	staleValidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadparser_validation_stale_total",
		Help: "Validation results discarded because the session changed meanwhile.",
	})
)

// Service owns the editing sessions and the pipeline they run through.
type Service struct {
	reg     *schema.Registry
	norm    *autofix.Normalizer
	parser  *workbook.Parser
	engine  *validation.Engine
	history *history.Store
	limiter *ParseLimiter
	now     func() time.Time
	newID   func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a Service.
type Option func(*Service)

// WithParser replaces the default parser (for a different size cap).
func WithParser(p *workbook.Parser) Option {
	return func(s *Service) { s.parser = p }
}

// WithEngine replaces the default validation engine.
func WithEngine(e *validation.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithHistory enables snapshot persistence.
func WithHistory(h *history.Store) Option {
	return func(s *Service) { s.history = h }
}

// WithLimiter sets the parse concurrency limiter.
func WithLimiter(l *ParseLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithSessionIDs(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a Service for reg. Without WithHistory, sessions are
// not persisted.
func NewService(reg *schema.Registry, opts ...Option) *Service {
	norm := autofix.New(reg)
	s := &Service{
		reg:      reg,
		norm:     norm,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = workbook.NewParser(reg, norm, workbook.WithClock(s.now))
	}
	if s.engine == nil {
		s.engine = validation.New(reg)
	}
	if s.limiter == nil {
		s.limiter = NewParseLimiter(0, 0)
	}
	return s
}

// Registry returns the schema the service validates against.
func (s *Service) Registry() *schema.Registry { return s.reg }

// Limiter returns the parse limiter, for status reporting and shutdown.
func (s *Service) Limiter() *ParseLimiter { return s.limiter }

// Upload parses data as fileName and opens a session on it. The file is
// validated and saved to history before Upload returns.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte) (*State, error) {
	if fileName == "" && len(data) == 0 {
		return nil, ErrNoFile
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	file, err := s.parser.Parse(data, fileName)
	s.limiter.Release()

	log := logging.FromContext(ctx)
	if err != nil {
		log.Warn("parse failed", "file", fileName, "bytes", len(data), "error", err)
		return nil, err
	}
	log.Info("file parsed",
		"file", fileName,
		"sheets", file.TotalSheets,
		"rows", file.TotalRows,
		"auto_fixes", len(file.AutoFixes),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return s.open(ctx, file, "")
}

// CreateBlank opens a session on a new file holding empty template rows.
func (s *Service) CreateBlank(ctx context.Context) (*State, error) {
	return s.open(ctx, workbook.Blank(s.reg, workbook.BlankRows, s.now()), "")
}

// Restore opens a session on a saved history entry. Further edits keep
// saving to the same entry.
func (s *Service) Restore(ctx context.Context, historyID string) (*State, error) {
	if s.history == nil {
		return nil, ErrSavedUploadNotFound
	}
	file, ok := s.history.Get(ctx, historyID)
	if !ok {
		return nil, fmt.Errorf("restore %s: %w", historyID, ErrSavedUploadNotFound)
	}
	return s.open(ctx, file, historyID)
}

// History lists saved uploads, newest first.
func (s *Service) History(ctx context.Context) []history.Summary {
	if s.history == nil {
		return []history.Summary{}
	}
	return s.history.List(ctx)
}

// DeleteSaved removes a history entry. Live sessions saved under it are
// detached and save under a new id on their next edit.
func (s *Service) DeleteSaved(ctx context.Context, historyID string) {
	if s.history == nil {
		return
	}
	s.history.Delete(ctx, historyID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		sess.mu.Lock()
		if sess.historyID == historyID {
			sess.historyID = ""
		}
		sess.mu.Unlock()
	}
}

// Clear drops a live session. Its history entry is kept.
func (s *Service) Clear(ctx context.Context, id string) error {
	if _, err := s.session(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	activeSessions.Dec()
	return nil
}

// State returns the current state of a session.
func (s *Service) State(ctx context.Context, id string) (*State, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.stateLocked(), nil
}

// Errors returns the latest validation errors of a session matching f.
func (s *Service) Errors(ctx context.Context, id string, f validation.Filter) ([]model.ValidationError, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.report == nil {
		return []model.ValidationError{}, nil
	}
	return validation.FilterErrors(sess.report.Errors, f), nil
}

// Validate re-runs validation on the current sheet. It returns
// ErrStaleValidation if the session was edited while validation ran.
func (s *Service) Validate(ctx context.Context, id string) (*State, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.validate(ctx, sess, false)
}

// session looks up id for the caller in ctx. A session opened by a user is
// reported as not found to every other caller; one opened without a user is
// open to all.
func (s *Service) session(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.owner != "" && sess.owner != UserIDFromContext(ctx) {
		return nil, ErrSessionNotFound
	}
	sess.lastUsed = s.now()
	return sess, nil
}

func (s *Service) open(ctx context.Context, file *model.ParsedFile, historyID string) (*State, error) {
	sess := &Session{
		ID:        s.newID(),
		reg:       s.reg,
		owner:     UserIDFromContext(ctx),
		historyID: historyID,
		file:      file,
		lastUsed:  s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	activeSessions.Inc()

	logging.FromContext(ctx).Info("session opened",
		"session_id", sess.ID,
		"file", file.FileName,
		"history_id", historyID,
		"user_id", sess.owner,
		"client_ip", ClientIPFromContext(ctx),
	)

	return s.validate(ctx, sess, true)
}

// validate runs the engine on a snapshot of the current sheet taken under the
// session lock, then applies the report only if the version is unchanged.
// With persist set, the applied result is also saved to history.
func (s *Service) validate(ctx context.Context, sess *Session, persist bool) (*State, error) {
	sess.mu.Lock()
	version := sess.version
	file := sess.file
	var rows []model.Row
	if sess.current < len(file.Sheets) {
		rows = file.Sheets[sess.current].Rows
	}
	sess.mu.Unlock()

	report, err := s.engine.Run(ctx, rows, len(file.Sheets))
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.version != version {
		staleValidations.Inc()
		logging.FromContext(ctx).Debug("discarding stale validation",
			"session_id", sess.ID,
			"validated_version", version,
			"current_version", sess.version,
		)
		return nil, ErrStaleValidation
	}

	sess.report = report
	if persist {
		s.saveLocked(ctx, sess)
	}
	return sess.stateLocked(), nil
}

func (s *Service) saveLocked(ctx context.Context, sess *Session) {
	if s.history == nil {
		return
	}
	in := history.SaveInput{
		ID:           sess.historyID,
		File:         sess.file,
		AutoFixCount: len(sess.file.AutoFixes),
	}
	if sess.report != nil {
		sum := sess.report.Summary
		in.Summary = &sum
		in.TotalErrors = sum.TotalErrors
	}
	sess.historyID = s.history.Save(ctx, in)
}
