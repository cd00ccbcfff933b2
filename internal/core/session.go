package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/LeadParser/internal/logging"
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
	"github.com/JonMunkholm/LeadParser/internal/validation"
	"github.com/JonMunkholm/LeadParser/internal/workbook"
)

// Session is one file being edited. All fields are guarded by mu.
type Session struct {
	ID string

	reg *schema.Registry

	mu        sync.Mutex
	owner     string
	historyID string
	file      *model.ParsedFile
	current   int
	version   uint64
	report    *validation.Report
	lastUsed  time.Time
}

// State is the client-visible view of a session.
type State struct {
	SessionID    string                   `json:"sessionId"`
	HistoryID    string                   `json:"historyId,omitempty"`
	Version      uint64                   `json:"version"`
	CurrentSheet int                      `json:"currentSheet"`
	File         *model.ParsedFile        `json:"file"`
	Headers      workbook.HeaderCheck     `json:"headers"`
	Errors       []model.ValidationError  `json:"errors"`
	Summary      *model.ValidationSummary `json:"summary,omitempty"`
}

func (sess *Session) stateLocked() *State {
	st := &State{
		SessionID:    sess.ID,
		HistoryID:    sess.historyID,
		Version:      sess.version,
		CurrentSheet: sess.current,
		File:         sess.file,
		Errors:       []model.ValidationError{},
	}
	if sess.current < len(sess.file.Sheets) {
		st.Headers = workbook.CheckHeaders(sess.file.Sheets[sess.current], sess.reg)
	}
	if sess.report != nil {
		st.Errors = sess.report.Errors
		sum := sess.report.Summary
		st.Summary = &sum
	}
	return st
}

// CellEdit sets one cell. Row uses sheet numbering (2 is the first data
// row). With Normalize set, the value goes through the auto-fix chain first
// and the resulting fixes are appended to the file's fix log.
type CellEdit struct {
	Row       int    `json:"row"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Normalize bool   `json:"normalize"`
}

// mutation builds the replacement file for an edit. It receives a deep copy
// it may modify freely.
type mutation func(file *model.ParsedFile, current int) (newCurrent int, err error)

// commit applies m, bumps the version, re-validates and saves. If another
// edit lands while validation runs, the state is returned without a report
// for this version; the later edit validates on its own.
func (s *Service) commit(ctx context.Context, id, op string, m mutation) (*State, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	next := sess.file.Clone()
	current, err := m(next, sess.current)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	next.Recount()
	sess.file = next
	sess.current = current
	sess.version++
	sess.report = nil
	version := sess.version
	sess.mu.Unlock()

	logging.FromContext(ctx).Debug("session edited",
		"session_id", id,
		"op", op,
		"version", version,
	)

	st, err := s.validate(ctx, sess, true)
	if errors.Is(err, ErrStaleValidation) {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.stateLocked(), nil
	}
	return st, err
}

// SelectSheet makes the sheet at index current and validates it.
func (s *Service) SelectSheet(ctx context.Context, id string, index int) (*State, error) {
	return s.commit(ctx, id, "select_sheet", func(f *model.ParsedFile, _ int) (int, error) {
		if index < 0 || index >= len(f.Sheets) {
			return 0, fmt.Errorf("%w: %d of %d", ErrSheetOutOfRange, index, len(f.Sheets))
		}
		return index, nil
	})
}

// UpdateCell changes one cell of the current sheet.
func (s *Service) UpdateCell(ctx context.Context, id string, edit CellEdit) (*State, error) {
	if !s.reg.IsKnown(edit.Field) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, edit.Field)
	}
	return s.commit(ctx, id, "update_cell", func(f *model.ParsedFile, current int) (int, error) {
		rows, i, err := rowAt(f, current, edit.Row)
		if err != nil {
			return current, err
		}
		value := edit.Value
		if edit.Normalize {
			res := s.norm.NormalizeCell(value, edit.Field, edit.Row)
			value = res.Value
			f.AutoFixes = append(f.AutoFixes, res.Fixes...)
		}
		rows[i].Set(edit.Field, value)
		return current, nil
	})
}

// DeleteRow removes one row of the current sheet. Later rows move up.
func (s *Service) DeleteRow(ctx context.Context, id string, row int) (*State, error) {
	return s.commit(ctx, id, "delete_row", func(f *model.ParsedFile, current int) (int, error) {
		rows, i, err := rowAt(f, current, row)
		if err != nil {
			return current, err
		}
		f.Sheets[current].Rows = append(rows[:i:i], rows[i+1:]...)
		return current, nil
	})
}

// ReplaceRows replaces every row of the current sheet, as a grid editor does
// after a bulk paste. Every field must be part of the schema.
func (s *Service) ReplaceRows(ctx context.Context, id string, rows []model.Row) (*State, error) {
	for _, r := range rows {
		for _, k := range r.Keys() {
			if !s.reg.IsKnown(k) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownField, k)
			}
		}
	}
	return s.commit(ctx, id, "replace_rows", func(f *model.ParsedFile, current int) (int, error) {
		if current >= len(f.Sheets) {
			return current, ErrSheetOutOfRange
		}
		out := make([]model.Row, len(rows))
		for i, r := range rows {
			out[i] = r.Clone()
		}
		f.Sheets[current].Rows = out
		return current, nil
	})
}

// ApplyFixes writes the suggested fix of every auto-fixable error in the
// latest report, or only of the errors named in errorIDs when given. Each
// applied fix is added to the file's fix log.
func (s *Service) ApplyFixes(ctx context.Context, id string, errorIDs []string) (*State, int, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	sess.mu.Lock()
	var fixable []model.ValidationError
	if sess.report != nil {
		want := make(map[string]bool, len(errorIDs))
		for _, eid := range errorIDs {
			want[eid] = true
		}
		for _, ve := range sess.report.Errors {
			if ve.CanAutoFix && ve.SuggestedFix != nil && (len(want) == 0 || want[ve.ID]) {
				fixable = append(fixable, ve)
			}
		}
	}
	sess.mu.Unlock()

	if len(fixable) == 0 {
		st, err := s.State(ctx, id)
		return st, 0, err
	}

	applied := 0
	st, err := s.commit(ctx, id, "apply_fixes", func(f *model.ParsedFile, current int) (int, error) {
		applied = 0
		for _, ve := range fixable {
			rows, i, err := rowAt(f, current, ve.RowIndex)
			if err != nil {
				continue
			}
			old := rows[i].Value(ve.Field)
			// skip cells edited since the report was built
			if strings.TrimSpace(old) != strings.TrimSpace(ve.CellValue) || old == *ve.SuggestedFix {
				continue
			}
			rows[i].Set(ve.Field, *ve.SuggestedFix)
			f.AutoFixes = append(f.AutoFixes, model.AutoFixRecord{
				RowIndex:      ve.RowIndex,
				Field:         ve.Field,
				OriginalValue: old,
				FixedValue:    *ve.SuggestedFix,
				Kind:          fixKindFor(ve.Kind),
			})
			applied++
		}
		return current, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return st, applied, nil
}

func fixKindFor(k model.ErrorKind) model.FixKind {
	if k == model.ErrLeadingTrailingSpaces {
		return model.FixSpaceTrim
	}
	return model.FixDropdownMatch
}

// rowAt resolves a sheet row number on the current sheet.
func rowAt(f *model.ParsedFile, current, row int) ([]model.Row, int, error) {
	if current >= len(f.Sheets) {
		return nil, 0, ErrSheetOutOfRange
	}
	rows := f.Sheets[current].Rows
	i := row - model.HeaderRowOffset
	if i < 0 || i >= len(rows) {
		return nil, 0, fmt.Errorf("%w: row %d of %d", ErrRowOutOfRange, row, len(rows)+model.HeaderRowOffset-1)
	}
	return rows, i, nil
}

// ExportResult is a cleaned workbook ready for download. Exporting is never
// blocked by validation errors; HasErrors tells the caller to warn.
type ExportResult struct {
	Data       []byte
	FileName   string
	ErrorCount int
	HasErrors  bool
}

// Export writes every non-empty sheet of the session as xlsx.
func (s *Service) Export(ctx context.Context, id string) (*ExportResult, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	file := sess.file
	errCount := -1
	if sess.report != nil {
		errCount = sess.report.Summary.TotalErrors
	}
	sess.mu.Unlock()

	data, err := workbook.Export(file.Sheets)
	if err != nil {
		return nil, err
	}

	res := &ExportResult{
		Data:       data,
		FileName:   workbook.ExportName(file.FileName),
		ErrorCount: max(errCount, 0),
		HasErrors:  errCount != 0,
	}
	log := logging.FromContext(ctx).With("session_id", id, "file", res.FileName, "bytes", len(data))
	if res.HasErrors {
		log.Warn("exporting with validation errors", "errors", res.ErrorCount)
	} else {
		log.Info("export written")
	}
	return res, nil
}

// PruneIdle drops sessions unused for longer than maxIdle and returns how
// many were dropped. Their history entries are kept.
func (s *Service) PruneIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			n++
		}
	}
	activeSessions.Sub(float64(n))
	return n
}

// StartSessionReaper calls PruneIdle every interval until ctx is cancelled.
func (s *Service) StartSessionReaper(ctx context.Context, maxIdle, interval time.Duration) {
	slog.Info("session reaper started",
		"max_idle", maxIdle.String(),
		"interval", interval.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case <-ticker.C:
			if n := s.PruneIdle(maxIdle); n > 0 {
				slog.Info("pruned idle sessions", "sessions_removed", n)
			}
		}
	}
}
