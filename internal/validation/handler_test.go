package validation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emma-crm/warden/internal/relevance"
)

func newTestHandler(t *testing.T) (*harness, http.Handler) {
	t.Helper()
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	mux := http.NewServeMux()
	handler := h.system.Handler()
	for _, route := range handler.Routes().Routes {
		mux.HandleFunc(route.Method+" /validation"+route.Pattern, route.Handler)
	}
	return h, mux
}

func TestHandlerValidate(t *testing.T) {
	_, mux := newTestHandler(t)

	action := scheduledAction(map[string]string{"dealStatus": "active"})
	body, err := json.Marshal(map[string]any{"action": action, "allow_llm": false})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", "/validation", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result relevance.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Relevant {
		t.Errorf("expected relevant verdict: %s", result.Reason)
	}
	if result.ActionID != action.ID {
		t.Error("response must reference the action")
	}
}

func TestHandlerValidateMalformedBody(t *testing.T) {
	_, mux := newTestHandler(t)

	req := httptest.NewRequest("POST", "/validation", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerValidateBatchEmpty(t *testing.T) {
	_, mux := newTestHandler(t)

	req := httptest.NewRequest("POST", "/validation/batch", strings.NewReader(`{"requests": []}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerPolicyRoundTrip(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/validation/policy", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var policy relevance.Policy
	if err := json.NewDecoder(rec.Body).Decode(&policy); err != nil {
		t.Fatalf("decode policy: %v", err)
	}
	if policy.MinimumConfidence != 0.7 {
		t.Errorf("MinimumConfidence = %v, want 0.7", policy.MinimumConfidence)
	}

	policy.MinimumConfidence = 0.85
	body, err := json.Marshal(policy)
	if err != nil {
		t.Fatalf("marshal policy: %v", err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/validation/policy", strings.NewReader(string(body))))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var updated relevance.Policy
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated policy: %v", err)
	}
	if updated.MinimumConfidence != 0.85 {
		t.Errorf("MinimumConfidence = %v, want 0.85", updated.MinimumConfidence)
	}
}

func TestHandlerPolicyRejectsInvalid(t *testing.T) {
	_, mux := newTestHandler(t)

	body := `{"enable_llm": true, "minimum_confidence": 2.0, "default_on_uncertainty": "proceed", "enable_audit_log": true, "batch_concurrency": 5}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/validation/policy", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerAuditLog(t *testing.T) {
	h, mux := newTestHandler(t)

	action := scheduledAction(nil)
	h.system.Validate(context.Background(), relevance.Request{Action: action})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/validation/audit?action_type=congrats_email", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var results []relevance.Result
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results) != 1 || results[0].ActionID != action.ID {
		t.Errorf("results = %v, want the recorded decision", results)
	}
}

func TestHandlerAuditLogInvalidContactID(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/validation/audit?contact_id=not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerSuggestAlternativesUnknownType(t *testing.T) {
	_, mux := newTestHandler(t)

	action := scheduledAction(nil)
	action.Type = "cold_call"
	body, err := json.Marshal(map[string]any{"action": action})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/validation/alternatives", strings.NewReader(string(body))))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %s, want empty array", body)
	}
}
