package relevance_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/internal/prompts"
	"github.com/emma-crm/warden/internal/relevance"
)

type stubJudge struct {
	response string
	err      error
	system   string
	user     string
}

func (j *stubJudge) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	j.system = systemPrompt
	j.user = userPrompt
	if j.err != nil {
		return "", j.err
	}
	return j.response, nil
}

type stubPrompts struct {
	prompts.System
	prompt string
	err    error
}

func (s *stubPrompts) SystemPrompt(ctx context.Context, role prompts.Role, industry prompts.Industry) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.prompt, nil
}

func newLLMEngine(judge relevance.Judge, system prompts.System) *relevance.LLMEngine {
	return relevance.NewLLMEngine(judge, system, testLogger())
}

func TestLLMValidate(t *testing.T) {
	judge := &stubJudge{response: `{
		"isRelevant": true,
		"confidenceScore": 0.85,
		"reason": "deal is still active",
		"recommendedAction": "proceed",
		"alternativeActions": ["follow_up_email"]
	}`}
	engine := newLLMEngine(judge, &stubPrompts{prompt: "you are a reviewer"})

	traceID := uuid.New()
	result := engine.Validate(context.Background(), sampleAction("congrats_email"), snapshotWith(nil, nil), traceID)

	if !result.Relevant {
		t.Error("expected relevant verdict")
	}
	if result.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", result.Confidence)
	}
	if result.Method != relevance.MethodLLM {
		t.Errorf("Method = %q, want %q", result.Method, relevance.MethodLLM)
	}
	if result.Disposition != relevance.DispositionProceed {
		t.Errorf("Disposition = %q, want %q", result.Disposition, relevance.DispositionProceed)
	}
	if len(result.Alternatives) != 1 || result.Alternatives[0] != "follow_up_email" {
		t.Errorf("Alternatives = %v, want [follow_up_email]", result.Alternatives)
	}
	if result.TraceID != traceID {
		t.Error("result must carry the request trace")
	}
	if judge.system != "you are a reviewer" {
		t.Errorf("system prompt = %q, want the resolved prompt", judge.system)
	}
	if !strings.Contains(judge.user, "congrats_email") {
		t.Error("user prompt must include the action payload")
	}
}

func TestLLMValidateFencedResponse(t *testing.T) {
	judge := &stubJudge{response: "```json\n" + `{"isRelevant": false, "confidenceScore": 0.9, "reason": "deal closed", "recommendedAction": "cancel"}` + "\n```"}
	engine := newLLMEngine(judge, &stubPrompts{prompt: "you are a reviewer"})

	result := engine.Validate(context.Background(), sampleAction("congrats_email"), snapshotWith(nil, nil), uuid.New())

	if result.Relevant {
		t.Error("expected not-relevant verdict")
	}
	if result.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", result.Confidence)
	}
	if result.Disposition != relevance.DispositionCancel {
		t.Errorf("Disposition = %q, want %q", result.Disposition, relevance.DispositionCancel)
	}
}

func TestLLMValidateClampsConfidence(t *testing.T) {
	judge := &stubJudge{response: `{"isRelevant": true, "confidenceScore": 3.2, "reason": "very sure"}`}
	engine := newLLMEngine(judge, &stubPrompts{prompt: "p"})

	result := engine.Validate(context.Background(), sampleAction("congrats_email"), snapshotWith(nil, nil), uuid.New())
	if result.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want clamped to 1.0", result.Confidence)
	}
}

func TestLLMValidateDegrades(t *testing.T) {
	tests := []struct {
		name   string
		judge  *stubJudge
		system *stubPrompts
	}{
		{"transport failure", &stubJudge{err: errors.New("connection refused")}, &stubPrompts{prompt: "p"}},
		{"unparseable response", &stubJudge{response: "I think it depends."}, &stubPrompts{prompt: "p"}},
		{"prompt resolution failure", &stubJudge{response: "{}"}, &stubPrompts{err: errors.New("store offline")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newLLMEngine(tt.judge, tt.system)
			result := engine.Validate(context.Background(), sampleAction("congrats_email"), snapshotWith(nil, nil), uuid.New())

			if result.Relevant {
				t.Error("degraded result must not be relevant")
			}
			if result.Confidence != 0.0 {
				t.Errorf("Confidence = %v, want 0.0", result.Confidence)
			}
			if result.Method != relevance.MethodLLM {
				t.Errorf("Method = %q, want %q", result.Method, relevance.MethodLLM)
			}
			if result.Reason == "" {
				t.Error("degraded result must explain the failure")
			}
		})
	}
}

func TestLLMValidateReasonlessRejectionDegrades(t *testing.T) {
	judge := &stubJudge{response: `{"isRelevant": false, "confidenceScore": 0.8}`}
	engine := newLLMEngine(judge, &stubPrompts{prompt: "p"})

	result := engine.Validate(context.Background(), sampleAction("congrats_email"), snapshotWith(nil, nil), uuid.New())

	if result.Relevant {
		t.Error("expected not-relevant verdict")
	}
	if result.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0 so arbitration keeps the rule verdict", result.Confidence)
	}
	if strings.TrimSpace(result.Reason) == "" {
		t.Error("a rejection must carry a reason")
	}
}

func TestLLMValidateUnknownDisposition(t *testing.T) {
	judge := &stubJudge{response: `{"isRelevant": true, "confidenceScore": 0.8, "reason": "ok", "recommendedAction": "escalate"}`}
	engine := newLLMEngine(judge, &stubPrompts{prompt: "p"})

	result := engine.Validate(context.Background(), sampleAction("congrats_email"), snapshotWith(nil, nil), uuid.New())
	if result.Disposition != "" {
		t.Errorf("Disposition = %q, want empty for unrecognized recommendation", result.Disposition)
	}
}
