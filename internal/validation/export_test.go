package validation_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/emma-crm/warden/internal/relevance"
	"github.com/emma-crm/warden/internal/validation"
)

func TestExportAudit(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	h.system.Validate(context.Background(), relevance.Request{Action: scheduledAction(nil)})
	h.system.Validate(context.Background(), relevance.Request{Action: scheduledAction(nil)})

	key, err := h.system.ExportAudit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if key != h.store.key {
		t.Errorf("returned key %q does not match uploaded key %q", key, h.store.key)
	}
	if !strings.HasPrefix(key, "audit/") || !strings.HasSuffix(key, ".json") {
		t.Errorf("key = %q, want audit/...json", key)
	}
	if h.store.contentType != "application/json" {
		t.Errorf("contentType = %q, want application/json", h.store.contentType)
	}

	var payload struct {
		Count   int                `json:"count"`
		Results []relevance.Result `json:"results"`
	}
	if err := json.Unmarshal(h.store.data, &payload); err != nil {
		t.Fatalf("uploaded payload is not valid JSON: %v", err)
	}
	if payload.Count != 2 || len(payload.Results) != 2 {
		t.Errorf("payload count = %d with %d results, want 2 and 2", payload.Count, len(payload.Results))
	}
}

func TestExportAuditEmptyTrail(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	if _, err := h.system.ExportAudit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(h.store.data, &payload); err != nil {
		t.Fatalf("uploaded payload is not valid JSON: %v", err)
	}
	if payload.Count != 0 {
		t.Errorf("payload count = %d, want 0", payload.Count)
	}
}

func TestExportAuditUploadFailure(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})
	h.store.err = errors.New("container unavailable")

	if _, err := h.system.ExportAudit(context.Background()); !errors.Is(err, validation.ErrExportFailed) {
		t.Errorf("error = %v, want ErrExportFailed", err)
	}
}
