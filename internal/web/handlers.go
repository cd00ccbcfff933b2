package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/LeadParser/internal/core"
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
	"github.com/JonMunkholm/LeadParser/internal/validation"
	"github.com/JonMunkholm/LeadParser/internal/workbook"
)

// multipartSlack covers multipart framing on top of the file size cap.
const multipartSlack = 1 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type cellEditRequest struct {
	Row       int    `json:"row" validate:"min=2"`
	Field     string `json:"field" validate:"required"`
	Value     string `json:"value"`
	Normalize bool   `json:"normalize"`
}

type replaceRowsRequest struct {
	Rows []model.Row `json:"rows" validate:"required"`
}

type applyFixesRequest struct {
	ErrorIDs []string `json:"errorIds"`
}

type applyFixesResponse struct {
	Applied int         `json:"applied"`
	State   *core.State `json:"state"`
}

type schemaResponse struct {
	Fields   []schema.FieldDefinition `json:"fields"`
	Required []string                 `json:"required"`
	System   []string                 `json:"system"`
	Dates    []string                 `json:"dates"`
}

// decodeJSON reads a JSON body into v and checks its validate tags. With
// optional set an empty body is accepted and leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return nil
}

// intParam parses a numeric URL parameter.
func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", core.ErrInvalidRequest, name)
	}
	return n, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"parse":  s.sessions.Limiter().Status(),
	})
}

// handleSchema returns the field catalogue clients build their grid from.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	reg := s.sessions.Registry()
	writeJSON(w, r, http.StatusOK, schemaResponse{
		Fields:   reg.Fields(),
		Required: reg.RequiredFields(),
		System:   reg.SystemFields(),
		Dates:    reg.DateFields(),
	})
}

// handleUpload parses a multipart "file" field and opens a session on it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartSlack)

	if err := r.ParseMultipartForm(maxSize + multipartSlack); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(w, r, workbook.ErrFileTooLarge)
			return
		}
		fail(w, r, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		fail(w, r, workbook.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	st, err := s.sessions.Upload(r.Context(), header.Filename, data)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, st)
}

func (s *Server) handleCreateBlank(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.CreateBlank(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, st)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

// handleErrors lists the latest validation errors. ?filter= takes all,
// auto-fixable or required-fields.
func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	f, err := validation.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		fail(w, r, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err))
		return
	}
	errs, err := s.sessions.Errors(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"filter": f,
		"errors": errs,
	})
}

func (s *Server) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	var req cellEditRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		fail(w, r, err)
		return
	}

	st, err := s.sessions.UpdateCell(r.Context(), chi.URLParam(r, "id"), core.CellEdit{
		Row:       req.Row,
		Field:     req.Field,
		Value:     req.Value,
		Normalize: req.Normalize,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

// handleReplaceRows replaces the current sheet's rows, as after a grid paste.
func (s *Server) handleReplaceRows(w http.ResponseWriter, r *http.Request) {
	var req replaceRowsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		fail(w, r, err)
		return
	}

	st, err := s.sessions.ReplaceRows(r.Context(), chi.URLParam(r, "id"), req.Rows)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	row, err := intParam(r, "row")
	if err != nil {
		fail(w, r, err)
		return
	}

	st, err := s.sessions.DeleteRow(r.Context(), chi.URLParam(r, "id"), row)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleSelectSheet(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		fail(w, r, err)
		return
	}

	st, err := s.sessions.SelectSheet(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

// handleApplyFixes applies suggested fixes. An empty body applies all of them.
func (s *Server) handleApplyFixes(w http.ResponseWriter, r *http.Request) {
	var req applyFixesRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		fail(w, r, err)
		return
	}

	st, applied, err := s.sessions.ApplyFixes(r.Context(), chi.URLParam(r, "id"), req.ErrorIDs)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, applyFixesResponse{Applied: applied, State: st})
}

// handleExport streams the cleaned workbook. Remaining errors never block the
// download; they are reported in X-Validation-Errors.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.sessions.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", xlsxContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	h.Set("Content-Length", strconv.Itoa(len(res.Data)))
	h.Set("X-Validation-Errors", strconv.Itoa(res.ErrorCount))
	if res.HasErrors {
		h.Set("X-Export-Warning", "file contains validation errors")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"entries": s.sessions.History(r.Context()),
	})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.Restore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, st)
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	s.sessions.DeleteSaved(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
