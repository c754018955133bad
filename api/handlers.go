/*
handlers.go - HTTP API handlers for pay structure sessions

PURPOSE:
  Exposes the compensation structure engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the session
  controller in package engine.

ENDPOINTS:
  Sessions:
    POST   /api/sessions                     Create (optionally from template)
    GET    /api/sessions                     List summaries
    GET    /api/sessions/{id}                Session with warnings
    DELETE /api/sessions/{id}                Delete
    PUT    /api/sessions/{id}/config         Company settings
    POST   /api/sessions/{id}/template       Load template
    POST   /api/sessions/{id}/reset          Clear jobs and grades
    PUT    /api/sessions/{id}/method         Switch evaluation method

  Factors:
    GET    /api/sessions/{id}/factors          Current map (JSON or YAML)
    PUT    /api/sessions/{id}/factors          Replace map and rescore
    GET    /api/sessions/{id}/factors/history  Every version, oldest first
    PUT    /api/sessions/{id}/factors/{factorID}                  Add or rename factor
    DELETE /api/sessions/{id}/factors/{factorID}                  Remove factor
    POST   /api/sessions/{id}/factors/{factorID}/options          Add level
    PATCH  /api/sessions/{id}/factors/{factorID}/options/{value}  Edit level
    DELETE /api/sessions/{id}/factors/{factorID}/options/{value}  Remove level

  Jobs:
    POST   /api/sessions/{id}/jobs               Add
    PATCH  /api/sessions/{id}/jobs/{jobID}       Update
    DELETE /api/sessions/{id}/jobs/{jobID}       Remove

  Structure:
    GET    /api/sessions/{id}/suggestion         Proposed parameter
    GET    /api/sessions/{id}/preview?param=N    Dry run
    POST   /api/sessions/{id}/grades/generate    Build grades
    PATCH  /api/sessions/{id}/grades/{gradeID}   Edit mid/spread/name
    GET    /api/sessions/{id}/diagnostics        Warnings
    GET    /api/sessions/{id}/export.xlsx        Workbook

ARCHITECTURE:
  Handler holds the session store and the collaborators. Every mutation
  runs inside Store.Update, so a failed engine call never persists a
  half-applied change.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Session, job or grade not found
  - 409: Duplicate session
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - calc.go: Stateless calculators
  - templates.go: Template listing and loading
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/metrics"
	"github.com/warp/pay-structure/point"
	"github.com/warp/pay-structure/report"
	"go.uber.org/zap"
)

// ErrBadRequest marks malformed input found before reaching the engine.
var ErrBadRequest = errors.New("bad request")

// maxBodyBytes caps request bodies; factor files are the largest input.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   engine.Store
	Factors *factory.FactorFactory

	// Defaults seeds the company settings of new sessions.
	Defaults engine.Config

	// Metrics may be nil.
	Metrics *metrics.Metrics

	log *zap.Logger
}

// NewHandler creates a new handler with the given store.
func NewHandler(store engine.Store, defaults engine.Config, m *metrics.Metrics, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Factors:  factory.NewFactorFactory(),
		Defaults: defaults,
		Metrics:  m,
		log:      log,
	}
}

// update runs fn on the session named in the URL inside the store's
// atomic update.
func (h *Handler) update(r *http.Request, fn func(s *engine.Session) error) (*engine.Session, error) {
	return h.Store.Update(r.Context(), chi.URLParam(r, "id"), fn)
}

// =============================================================================
// SESSION ENDPOINTS
// =============================================================================

// ListMethods returns the registered evaluation methods.
func (h *Handler) ListMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, grading.ListMethods())
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Store.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	cfg := h.Defaults
	if req.CompanyName != "" {
		cfg.CompanyName = req.CompanyName
	}
	if req.BaseWage > 0 {
		cfg.BaseWage = req.BaseWage
	}
	if err := cfg.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}

	sess := engine.NewSession("", cfg, h.log)
	if req.TemplateID != "" {
		tpl, err := factory.LookupTemplate(req.TemplateID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		sess.LoadTemplate(tpl)
	}
	if req.Method != "" {
		if err := sess.SetMethod(grading.Method(req.Method)); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	if err := h.Store.Create(r.Context(), sess); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("template", sess.Template),
		zap.String("request_id", middleware.GetReqID(r.Context())))
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.update(r, func(s *engine.Session) error {
		return s.SetConfig(req.toConfig())
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.update(r, func(s *engine.Session) error {
		s.Reset()
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (h *Handler) SetMethod(w http.ResponseWriter, r *http.Request) {
	var req MethodRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.update(r, func(s *engine.Session) error {
		return s.SetMethod(grading.Method(req.Method))
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

// =============================================================================
// FACTOR ENDPOINTS
// =============================================================================

// GetFactors returns the factor map as a factor file. YAML is returned
// when the client asks for it via Accept or ?format=yaml.
func (h *Handler) GetFactors(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if wantsYAML(r) {
		data, err := h.Factors.Marshal(sess.Factors, factory.FormatYAML)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, h.Factors.ToFile(sess.Factors))
}

// UpdateFactors replaces the factor map from a JSON or YAML factor file
// and rescores every job.
func (h *Handler) UpdateFactors(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	format := factory.FormatJSON
	if isYAML(r.Header.Get("Content-Type")) {
		format = factory.FormatYAML
	}
	m, err := h.Factors.Parse(data, format)
	if err != nil {
		if !engine.IsClientError(err) {
			err = fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		h.fail(w, r, err)
		return
	}

	sess, err := h.update(r, func(s *engine.Session) error {
		return s.UpdateFactors(m)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.FactorMapUpdated()
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (h *Handler) FactorHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Store.FactorHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// PutFactor creates a factor with one default level, or renames it if it
// already exists.
func (h *Handler) PutFactor(w http.ResponseWriter, r *http.Request) {
	var req FactorRequest
	if !h.decode(w, r, &req) {
		return
	}
	factorID := chi.URLParam(r, "factorID")
	h.editFactors(w, r, http.StatusOK, func(m *point.FactorMap) error {
		if _, ok := m.Factors[factorID]; ok {
			return m.SetFactorLabel(factorID, req.Label)
		}
		m.AddFactor(point.NewFactor(factorID, req.Label))
		return nil
	})
}

func (h *Handler) RemoveFactor(w http.ResponseWriter, r *http.Request) {
	factorID := chi.URLParam(r, "factorID")
	h.editFactors(w, r, http.StatusOK, func(m *point.FactorMap) error {
		return m.RemoveFactor(factorID)
	})
}

func (h *Handler) AddFactorOption(w http.ResponseWriter, r *http.Request) {
	var req OptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	factorID := chi.URLParam(r, "factorID")
	h.editFactors(w, r, http.StatusCreated, func(m *point.FactorMap) error {
		_, err := m.AddOption(factorID, req.Label)
		return err
	})
}

func (h *Handler) UpdateFactorOption(w http.ResponseWriter, r *http.Request) {
	value, err := intParam(r, "value")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req OptionPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	factorID := chi.URLParam(r, "factorID")
	h.editFactors(w, r, http.StatusOK, func(m *point.FactorMap) error {
		opt, ok := m.Factors[factorID].Option(value)
		if !ok {
			return fmt.Errorf("%w: factor %q has no level %d", point.ErrFactorNotFound, factorID, value)
		}
		if req.Label != nil {
			opt.Label = *req.Label
		}
		if req.Score != nil {
			opt.Score = *req.Score
		}
		return m.SetOption(factorID, value, opt.Label, opt.Score)
	})
}

func (h *Handler) RemoveFactorOption(w http.ResponseWriter, r *http.Request) {
	value, err := intParam(r, "value")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	factorID := chi.URLParam(r, "factorID")
	h.editFactors(w, r, http.StatusOK, func(m *point.FactorMap) error {
		return m.RemoveOption(factorID, value)
	})
}

// editFactors runs a single factor map edit and answers with the session.
func (h *Handler) editFactors(w http.ResponseWriter, r *http.Request, status int, edit func(m *point.FactorMap) error) {
	sess, err := h.update(r, func(s *engine.Session) error {
		return s.EditFactors(edit)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.FactorMapUpdated()
	}
	writeJSON(w, status, newSessionResponse(sess))
}

// =============================================================================
// JOB ENDPOINTS
// =============================================================================

func (h *Handler) AddJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if !h.decode(w, r, &req) {
		return
	}
	var job grading.Job
	_, err := h.update(r, func(s *engine.Session) error {
		job = s.AddJob(req.toInput())
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := intParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req JobPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	var job grading.Job
	_, err = h.update(r, func(s *engine.Session) error {
		var err error
		job, err = s.UpdateJob(jobID, req.toPatch())
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) RemoveJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := intParam(r, "jobID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_, err = h.update(r, func(s *engine.Session) error {
		return s.RemoveJob(jobID)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STRUCTURE ENDPOINTS
// =============================================================================

func (h *Handler) Suggestion(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	suggestion, err := sess.Suggest()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

// Preview dry-runs generation. Without ?param the suggested parameter is used.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var param int
	if raw := r.URL.Query().Get("param"); raw != "" {
		param, err = strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: param must be an integer", ErrBadRequest))
			return
		}
	} else {
		suggestion, err := sess.Suggest()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		param = suggestion.Param
	}

	rows, err := sess.Preview(param)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{Param: param, Rows: rows})
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}
	var grades []grading.Grade
	sess, err := h.update(r, func(s *engine.Session) error {
		var err error
		grades, err = s.Generate(req.Param)
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	warnings := sess.Diagnostics()
	if h.Metrics != nil {
		h.Metrics.StructureGenerated(sess.Method, grades, warnings)
	}
	writeJSON(w, http.StatusOK, newStructureResponse(grades, warnings))
}

func (h *Handler) EditGrade(w http.ResponseWriter, r *http.Request) {
	gradeID, err := intParam(r, "gradeID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req GradePatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.update(r, func(s *engine.Session) error {
		_, err := s.EditGrade(gradeID, req.toPatch())
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStructureResponse(sess.Grades, sess.Diagnostics()))
}

func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	warnings := sess.Diagnostics()
	if warnings == nil {
		warnings = []grading.Warning{}
	}
	writeJSON(w, http.StatusOK, warnings)
}

// ExportXLSX streams the session workbook.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, sess); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "pay-structure-"+sess.ID+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads a JSON body into dst and validates it. An empty body
// decodes as the zero value. On failure the error response is written and
// false is returned.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body", err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.fail(w, r, err)
		return false
	}
	return true
}

// fail maps an error to its HTTP response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, "validation_failed", "validation failed", validationDetails(verrs))
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, engine.ErrDuplicateSession):
		writeError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case engine.IsClientError(err), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

// validationDetails maps JSON field paths to the failed rule.
func validationDetails(verrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		details[field] = fe.Tag()
	}
	return details
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrBadRequest, name, raw)
	}
	return n, nil
}

func isYAML(contentType string) bool {
	return strings.Contains(contentType, "yaml")
}

func wantsYAML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "yaml" || isYAML(r.Header.Get("Accept"))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}
