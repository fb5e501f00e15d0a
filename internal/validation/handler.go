package validation

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/relevance"
	"github.com/emma-crm/warden/pkg/handlers"
	"github.com/emma-crm/warden/pkg/pagination"
	"github.com/emma-crm/warden/pkg/routes"
)

// Handler provides HTTP endpoints for validation operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// ValidateRequest is the JSON body for single validation calls. AllowLLM
// defaults to true when omitted.
type ValidateRequest struct {
	Action   relevance.ScheduledAction `json:"action"`
	Context  *contacts.Context         `json:"context,omitempty"`
	AllowLLM *bool                     `json:"allow_llm,omitempty"`
	TraceID  uuid.UUID                 `json:"trace_id,omitempty"`
}

// BatchRequest is the JSON body for batch validation calls.
type BatchRequest struct {
	Requests []ValidateRequest `json:"requests"`
}

// CriteriaRequest is the JSON body for rule-only evaluation calls.
type CriteriaRequest struct {
	Criteria map[string]string `json:"criteria"`
	Context  *contacts.Context `json:"context,omitempty"`
}

// LLMRequest is the JSON body for LLM-only validation calls.
type LLMRequest struct {
	Action  relevance.ScheduledAction `json:"action"`
	Context *contacts.Context         `json:"context,omitempty"`
}

// AlternativesRequest is the JSON body for alternative suggestion calls.
type AlternativesRequest struct {
	Action relevance.ScheduledAction `json:"action"`
}

// ExportResponse reports where an audit snapshot was written.
type ExportResponse struct {
	Key string `json:"key"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "validation"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for validation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/validation",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Validate},
			{Method: "POST", Pattern: "/batch", Handler: h.ValidateBatch},
			{Method: "POST", Pattern: "/criteria", Handler: h.EvaluateCriteria},
			{Method: "POST", Pattern: "/llm", Handler: h.ValidateWithLLM},
			{Method: "POST", Pattern: "/alternatives", Handler: h.SuggestAlternatives},
			{Method: "GET", Pattern: "/policy", Handler: h.Policy},
			{Method: "PUT", Pattern: "/policy", Handler: h.UpdatePolicy},
			{Method: "GET", Pattern: "/audit", Handler: h.AuditLog},
			{Method: "POST", Pattern: "/audit/export", Handler: h.ExportAudit},
		},
	}
}

func (r ValidateRequest) toDomain() relevance.Request {
	allowLLM := true
	if r.AllowLLM != nil {
		allowLLM = *r.AllowLLM
	}
	return relevance.Request{
		Action:   r.Action,
		Context:  r.Context,
		AllowLLM: allowLLM,
		TraceID:  r.TraceID,
	}
}

// Validate runs the full validation pipeline for a single action.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result := h.sys.Validate(r.Context(), req.toDomain())
	handlers.RespondJSON(w, http.StatusOK, result)
}

// ValidateBatch validates multiple actions with bounded concurrency and
// returns results in request order.
func (h *Handler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	if len(req.Requests) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyBatch)
		return
	}

	domain := make([]relevance.Request, len(req.Requests))
	for i, vr := range req.Requests {
		domain[i] = vr.toDomain()
	}

	results := h.sys.ValidateBatch(r.Context(), domain)
	handlers.RespondJSON(w, http.StatusOK, results)
}

// EvaluateCriteria runs only the deterministic rule engine.
func (h *Handler) EvaluateCriteria(w http.ResponseWriter, r *http.Request) {
	var req CriteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result := h.sys.EvaluateCriteria(req.Criteria, req.Context)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// ValidateWithLLM runs only the LLM judgment engine.
func (h *Handler) ValidateWithLLM(w http.ResponseWriter, r *http.Request) {
	var req LLMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result := h.sys.ValidateWithLLM(r.Context(), req.Action, req.Context)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// SuggestAlternatives returns substitute actions for a stale original.
func (h *Handler) SuggestAlternatives(w http.ResponseWriter, r *http.Request) {
	var req AlternativesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	suggestions := h.sys.SuggestAlternatives(req.Action)
	if suggestions == nil {
		suggestions = []relevance.ScheduledAction{}
	}
	handlers.RespondJSON(w, http.StatusOK, suggestions)
}

// Policy returns the current validation policy snapshot.
func (h *Handler) Policy(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Policy())
}

// UpdatePolicy atomically replaces the validation policy.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var p relevance.Policy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	if err := h.sys.UpdatePolicy(p); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Policy())
}

// AuditLog returns retained validation results, newest first, filtered by
// optional contact_id, action_type, start, and end query parameters.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	filters, err := auditFiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.AuditLog(filters))
}

// ExportAudit uploads an audit trail snapshot to blob storage.
func (h *Handler) ExportAudit(w http.ResponseWriter, r *http.Request) {
	key, err := h.sys.ExportAudit(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, ExportResponse{Key: key})
}

func auditFiltersFromQuery(values url.Values) (relevance.AuditFilters, error) {
	var f relevance.AuditFilters

	if c := values.Get("contact_id"); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			return f, ErrInvalidRequest
		}
		f.ContactID = &id
	}

	if a := values.Get("action_type"); a != "" {
		f.ActionType = &a
	}

	if s := values.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, ErrInvalidRequest
		}
		f.Start = &t
	}

	if e := values.Get("end"); e != "" {
		t, err := time.Parse(time.RFC3339, e)
		if err != nil {
			return f, ErrInvalidRequest
		}
		f.End = &t
	}

	return f, nil
}
