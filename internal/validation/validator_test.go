package validation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/prompts"
	"github.com/emma-crm/warden/internal/relevance"
	"github.com/emma-crm/warden/internal/validation"
	"github.com/emma-crm/warden/internal/workflow"
	"github.com/emma-crm/warden/pkg/pagination"
	"github.com/emma-crm/warden/pkg/storage"
)

type stubContactStore struct {
	contacts.System
	snap  *contacts.Context
	err   error
	orgID uuid.UUID
}

func (s *stubContactStore) Snapshot(ctx context.Context, contactID, organizationID uuid.UUID) (*contacts.Context, error) {
	s.orgID = organizationID
	if s.err != nil {
		return nil, s.err
	}
	snap := s.snap.Clone()
	snap.ContactID = contactID
	return snap, nil
}

type stubJudge struct {
	response string
	err      error
	calls    int
}

func (j *stubJudge) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	j.calls++
	if j.err != nil {
		return "", j.err
	}
	return j.response, nil
}

type stubPrompts struct {
	prompts.System
}

func (s *stubPrompts) SystemPrompt(ctx context.Context, role prompts.Role, industry prompts.Industry) (string, error) {
	return "relevance reviewer", nil
}

type stubStorage struct {
	storage.System
	key         string
	contentType string
	data        []byte
	err         error
}

func (s *stubStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.key = key
	s.contentType = contentType
	s.data = data
	return nil
}

type harness struct {
	system validation.System
	trail  *relevance.Trail
	store  *stubStorage
	judge  *stubJudge
}

func newHarness(policy relevance.Policy, contactStore contacts.System, judge *stubJudge) *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trail := relevance.NewTrail(100)
	store := &stubStorage{}

	rt := &workflow.Runtime{
		Contacts: contactStore,
		Rules:    relevance.NewRuleEngine(relevance.NewEvaluator(logger), logger),
		LLM:      relevance.NewLLMEngine(judge, &stubPrompts{}, logger),
		Policy:   relevance.NewPolicyStore(policy),
		Trail:    trail,
		Logger:   logger,
	}

	return &harness{
		system: validation.New(rt, store, logger, pagination.Config{}),
		trail:  trail,
		store:  store,
		judge:  judge,
	}
}

func activeSnapshot() *contacts.Context {
	last := time.Now().Add(-24 * time.Hour)
	return &contacts.Context{
		ContactID:       uuid.New(),
		LastInteraction: &last,
		Attributes: map[string]string{
			"dealstatus":      "active",
			"engagementlevel": "high",
		},
	}
}

func scheduledAction(criteria map[string]string) relevance.ScheduledAction {
	return relevance.ScheduledAction{
		ID:          uuid.New(),
		Type:        "congrats_email",
		Description: "congratulate on closing",
		ContactID:   uuid.New(),
		ScheduledAt: time.Now().Add(-72 * time.Hour),
		ExecuteAt:   time.Now(),
		Criteria:    criteria,
	}
}

func TestValidateRulePath(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	action := scheduledAction(map[string]string{"dealStatus": "active"})
	result := h.system.Validate(context.Background(), relevance.Request{Action: action})

	if !result.Relevant {
		t.Errorf("expected relevant verdict: %s", result.Reason)
	}
	if result.Method != relevance.MethodRules {
		t.Errorf("Method = %q, want %q", result.Method, relevance.MethodRules)
	}
	if result.ActionID != action.ID {
		t.Error("result must reference the action")
	}
	if result.ActionType != action.Type {
		t.Errorf("ActionType = %q, want %q", result.ActionType, action.Type)
	}
	if result.TraceID == uuid.Nil {
		t.Error("a trace identifier must be generated")
	}
	if result.ContextData[relevance.DataContactID] != action.ContactID.String() {
		t.Error("context data must carry the contact identity")
	}
	if h.trail.Len() != 1 {
		t.Errorf("trail length = %d, want 1", h.trail.Len())
	}
	if h.judge.calls != 0 {
		t.Errorf("confident rule verdict must not consult the judge, calls = %d", h.judge.calls)
	}
}

func TestValidateScopesSnapshotToOrganization(t *testing.T) {
	store := &stubContactStore{snap: activeSnapshot()}
	h := newHarness(relevance.DefaultPolicy(), store, &stubJudge{})

	action := scheduledAction(map[string]string{"dealStatus": "active"})
	action.OrganizationID = uuid.New()
	h.system.Validate(context.Background(), relevance.Request{Action: action})

	if store.orgID != action.OrganizationID {
		t.Errorf("snapshot organization = %v, want %v", store.orgID, action.OrganizationID)
	}
}

func TestValidateCallerSnapshotSkipsStore(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{err: errors.New("store offline")}, &stubJudge{})

	snap := activeSnapshot()
	result := h.system.Validate(context.Background(), relevance.Request{
		Action:  scheduledAction(map[string]string{"dealStatus": "active"}),
		Context: snap,
	})

	if result.Method != relevance.MethodRules {
		t.Errorf("Method = %q, want %q", result.Method, relevance.MethodRules)
	}
	if !result.Relevant {
		t.Errorf("expected relevant verdict: %s", result.Reason)
	}
}

func TestValidateArbitration(t *testing.T) {
	judge := &stubJudge{response: `{
		"isRelevant": true,
		"confidenceScore": 0.9,
		"reason": "milestone is still worth acknowledging",
		"recommendedAction": "proceed"
	}`}
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, judge)

	action := scheduledAction(map[string]string{"dealStatus": "closed"})
	result := h.system.Validate(context.Background(), relevance.Request{Action: action, AllowLLM: true})

	if judge.calls != 1 {
		t.Fatalf("judge calls = %d, want 1", judge.calls)
	}
	if result.Method != relevance.MethodLLM {
		t.Errorf("Method = %q, want %q", result.Method, relevance.MethodLLM)
	}
	if !result.Relevant {
		t.Error("higher-confidence LLM verdict should win arbitration")
	}
	if result.ActionID != action.ID {
		t.Error("arbitrated result must reference the action")
	}
}

func TestValidateDegradedJudgeKeepsRuleVerdict(t *testing.T) {
	judge := &stubJudge{err: errors.New("model endpoint unavailable")}
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, judge)

	action := scheduledAction(map[string]string{"dealStatus": "closed", "contactEngagement": "high"})
	result := h.system.Validate(context.Background(), relevance.Request{Action: action, AllowLLM: true})

	if judge.calls != 1 {
		t.Fatalf("judge calls = %d, want 1", judge.calls)
	}
	if result.Method != relevance.MethodRules {
		t.Errorf("Method = %q, want %q after judge degradation", result.Method, relevance.MethodRules)
	}
	if result.Relevant {
		t.Error("failed criterion verdict must stand when the judge degrades")
	}
}

func TestValidateDisabledLLMSkipsJudge(t *testing.T) {
	policy := relevance.DefaultPolicy()
	policy.EnableLLM = false
	judge := &stubJudge{}
	h := newHarness(policy, &stubContactStore{snap: activeSnapshot()}, judge)

	action := scheduledAction(map[string]string{"dealStatus": "closed"})
	result := h.system.Validate(context.Background(), relevance.Request{Action: action, AllowLLM: true})

	if judge.calls != 0 {
		t.Errorf("judge calls = %d, want 0 with LLM disabled", judge.calls)
	}
	if result.Method != relevance.MethodRules {
		t.Errorf("Method = %q, want %q", result.Method, relevance.MethodRules)
	}
}

func TestValidateFailSafe(t *testing.T) {
	tests := []struct {
		name         string
		stance       relevance.UncertaintyAction
		wantRelevant bool
	}{
		{"proceed fails open", relevance.UncertaintyProceed, true},
		{"suppress fails closed", relevance.UncertaintySuppress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := relevance.DefaultPolicy()
			policy.DefaultOnUncertainty = tt.stance
			h := newHarness(policy, &stubContactStore{err: errors.New("store offline")}, &stubJudge{})

			action := scheduledAction(map[string]string{"dealStatus": "active"})
			result := h.system.Validate(context.Background(), relevance.Request{Action: action})

			if result.Relevant != tt.wantRelevant {
				t.Errorf("Relevant = %v, want %v", result.Relevant, tt.wantRelevant)
			}
			if result.Confidence != 0.0 {
				t.Errorf("Confidence = %v, want 0.0", result.Confidence)
			}
			if result.Method != relevance.MethodFailsafe {
				t.Errorf("Method = %q, want %q", result.Method, relevance.MethodFailsafe)
			}
			if !strings.Contains(result.Reason, "validation failed") {
				t.Errorf("Reason = %q, want failure explanation", result.Reason)
			}
			if h.trail.Len() != 1 {
				t.Errorf("trail length = %d, fail-safe results must be audited", h.trail.Len())
			}
		})
	}
}

func TestValidateAuditDisabled(t *testing.T) {
	policy := relevance.DefaultPolicy()
	policy.EnableAuditLog = false
	h := newHarness(policy, &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	h.system.Validate(context.Background(), relevance.Request{
		Action: scheduledAction(map[string]string{"dealStatus": "active"}),
	})

	if h.trail.Len() != 0 {
		t.Errorf("trail length = %d, want 0 with audit logging disabled", h.trail.Len())
	}
}

func TestValidatePreservesExplicitTrace(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	traceID := uuid.New()
	result := h.system.Validate(context.Background(), relevance.Request{
		Action:  scheduledAction(nil),
		TraceID: traceID,
	})

	if result.TraceID != traceID {
		t.Errorf("TraceID = %v, want %v", result.TraceID, traceID)
	}
}

func TestValidateBatchOrdering(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	reqs := make([]relevance.Request, 8)
	for i := range reqs {
		reqs[i] = relevance.Request{Action: scheduledAction(map[string]string{"dealStatus": "active"})}
	}

	results := h.system.ValidateBatch(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(reqs))
	}

	for i := range reqs {
		if results[i].ActionID != reqs[i].Action.ID {
			t.Errorf("results[%d].ActionID = %v, want %v", i, results[i].ActionID, reqs[i].Action.ID)
		}
	}

	batchTrace := results[0].TraceID
	if batchTrace == uuid.Nil {
		t.Fatal("batch results must carry a trace identifier")
	}
	for i, r := range results {
		if r.TraceID != batchTrace {
			t.Errorf("results[%d].TraceID = %v, want shared batch trace %v", i, r.TraceID, batchTrace)
		}
	}
}

type countingContactStore struct {
	contacts.System
	mu       sync.Mutex
	inflight int
	peak     int
}

func (s *countingContactStore) Snapshot(ctx context.Context, contactID, organizationID uuid.UUID) (*contacts.Context, error) {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.peak {
		s.peak = s.inflight
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()

	return &contacts.Context{ContactID: contactID}, nil
}

func TestValidateBatchConcurrencyCeiling(t *testing.T) {
	store := &countingContactStore{}
	h := newHarness(relevance.DefaultPolicy(), store, &stubJudge{})

	reqs := make([]relevance.Request, 30)
	for i := range reqs {
		reqs[i] = relevance.Request{Action: scheduledAction(nil)}
	}

	h.system.ValidateBatch(context.Background(), reqs)

	if store.peak > relevance.DefaultPolicy().BatchConcurrency {
		t.Errorf("peak concurrency = %d, want at most %d", store.peak, relevance.DefaultPolicy().BatchConcurrency)
	}
}

func TestValidateBatchKeepsExplicitTraces(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	traceID := uuid.New()
	reqs := []relevance.Request{
		{Action: scheduledAction(nil), TraceID: traceID},
		{Action: scheduledAction(nil)},
	}

	results := h.system.ValidateBatch(context.Background(), reqs)
	if results[0].TraceID != traceID {
		t.Errorf("results[0].TraceID = %v, want explicit %v", results[0].TraceID, traceID)
	}
	if results[1].TraceID == traceID || results[1].TraceID == uuid.Nil {
		t.Error("requests without a trace must receive the batch trace")
	}
}

func TestIsStillRelevant(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	if !h.system.IsStillRelevant(context.Background(), scheduledAction(map[string]string{"dealStatus": "active"})) {
		t.Error("satisfied criteria should report still relevant")
	}
}

func TestEvaluateCriteria(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	snap := &contacts.Context{Attributes: map[string]string{"dealStatus": "closed"}}
	result := h.system.EvaluateCriteria(map[string]string{"dealStatus": "active"}, snap)

	if result.Relevant {
		t.Error("mismatched criterion should fail")
	}
	if result.Method != relevance.MethodRules {
		t.Errorf("Method = %q, want %q", result.Method, relevance.MethodRules)
	}
	if snap.Attributes["dealStatus"] != "closed" {
		t.Error("caller snapshot must not be mutated")
	}
}

func TestEvaluateCriteriaNilSnapshot(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	result := h.system.EvaluateCriteria(map[string]string{"dealStatus": "active"}, nil)
	if result.Relevant {
		t.Error("attribute criteria must fail against an empty snapshot")
	}
}

func TestValidateWithLLM(t *testing.T) {
	judge := &stubJudge{response: `{"isRelevant": false, "confidenceScore": 0.8, "reason": "deal already closed", "recommendedAction": "cancel"}`}
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, judge)

	action := scheduledAction(nil)
	result := h.system.ValidateWithLLM(context.Background(), action, activeSnapshot())

	if result.Method != relevance.MethodLLM {
		t.Errorf("Method = %q, want %q", result.Method, relevance.MethodLLM)
	}
	if result.Relevant {
		t.Error("expected not-relevant verdict")
	}
	if result.ActionID != action.ID {
		t.Error("result must reference the action")
	}
	if result.Disposition != relevance.DispositionCancel {
		t.Errorf("Disposition = %q, want %q", result.Disposition, relevance.DispositionCancel)
	}
}

func TestUpdatePolicy(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	updated := relevance.DefaultPolicy()
	updated.MinimumConfidence = 0.95
	if err := h.system.UpdatePolicy(updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.system.Policy().MinimumConfidence; got != 0.95 {
		t.Errorf("MinimumConfidence = %v, want 0.95", got)
	}

	invalid := relevance.DefaultPolicy()
	invalid.DefaultOnUncertainty = "guess"
	if err := h.system.UpdatePolicy(invalid); err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if got := h.system.Policy().MinimumConfidence; got != 0.95 {
		t.Errorf("rejected update must not change the policy, got %v", got)
	}
}

func TestAuditLogFilters(t *testing.T) {
	h := newHarness(relevance.DefaultPolicy(), &stubContactStore{snap: activeSnapshot()}, &stubJudge{})

	first := scheduledAction(nil)
	second := scheduledAction(nil)
	second.Type = "appointment_reminder"

	h.system.Validate(context.Background(), relevance.Request{Action: first})
	h.system.Validate(context.Background(), relevance.Request{Action: second})

	actionType := "appointment_reminder"
	results := h.system.AuditLog(relevance.AuditFilters{ActionType: &actionType})
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].ActionID != second.ID {
		t.Error("filtered audit log returned the wrong record")
	}
}
