package relevance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/prompts"
	"github.com/emma-crm/warden/pkg/formatting"
)

// Judge is the boundary to an LLM completion endpoint. Implementations send
// a system and user prompt pair and return the raw model output.
type Judge interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// judgment is the JSON shape the model is instructed to return.
type judgment struct {
	IsRelevant         bool     `json:"isRelevant"`
	ConfidenceScore    float64  `json:"confidenceScore"`
	Reason             string   `json:"reason"`
	RecommendedAction  string   `json:"recommendedAction"`
	AlternativeActions []string `json:"alternativeActions"`
}

// LLMEngine produces relevance judgments by consulting an LLM. Every failure
// mode (prompt resolution, transport, parsing) degrades to a zero-confidence
// not-relevant result rather than an error, so callers can always arbitrate
// against the rule-based verdict.
type LLMEngine struct {
	judge   Judge
	prompts prompts.System
	logger  *slog.Logger
}

// NewLLMEngine creates an LLM judgment engine.
func NewLLMEngine(judge Judge, prompts prompts.System, logger *slog.Logger) *LLMEngine {
	return &LLMEngine{
		judge:   judge,
		prompts: prompts,
		logger:  logger.With("system", "relevance"),
	}
}

// Validate asks the model whether the action is still worth executing given
// the contact's current context. The returned result is always tagged with
// the LLM method and never carries an error.
func (e *LLMEngine) Validate(ctx context.Context, action ScheduledAction, snap *contacts.Context, traceID uuid.UUID) Result {
	system, err := e.prompts.SystemPrompt(ctx, prompts.RoleRelevance, prompts.Industry(snap.Industry))
	if err != nil {
		return e.degraded(traceID, fmt.Errorf("%w: %v", ErrJudgeFailed, err))
	}

	user, err := composePrompt(action, snap)
	if err != nil {
		return e.degraded(traceID, fmt.Errorf("%w: %v", ErrJudgeFailed, err))
	}

	raw, err := e.judge.Complete(ctx, system, user)
	if err != nil {
		return e.degraded(traceID, fmt.Errorf("%w: %v", ErrJudgeFailed, err))
	}

	parsed, err := formatting.Parse[judgment](raw)
	if err != nil {
		return e.degraded(traceID, fmt.Errorf("%w: %v", ErrJudgeParse, err))
	}

	// A rejection must always explain itself. A response missing the reason
	// field is treated as unparseable rather than surfaced reason-less.
	if !parsed.IsRelevant && strings.TrimSpace(parsed.Reason) == "" {
		return e.degraded(traceID, fmt.Errorf("%w: rejection missing reason", ErrJudgeParse))
	}

	return Result{
		Relevant:     parsed.IsRelevant,
		Confidence:   clampConfidence(parsed.ConfidenceScore),
		Reason:       parsed.Reason,
		Method:       MethodLLM,
		CheckedBy:    CheckedBy,
		TraceID:      traceID,
		CheckedAt:    time.Now(),
		Disposition:  parseDisposition(parsed.RecommendedAction),
		Alternatives: parsed.AlternativeActions,
	}
}

// degraded synthesizes the zero-confidence result for a failed LLM call. The
// zero confidence guarantees arbitration keeps the rule-based verdict.
func (e *LLMEngine) degraded(traceID uuid.UUID, err error) Result {
	e.logger.Error("LLM validation degraded",
		"trace_id", traceID,
		"error", err)
	return Result{
		Relevant:   false,
		Confidence: 0.0,
		Reason:     err.Error(),
		Method:     MethodLLM,
		CheckedBy:  CheckedBy,
		TraceID:    traceID,
		CheckedAt:  time.Now(),
	}
}

func parseDisposition(value string) Disposition {
	switch Disposition(strings.ToLower(strings.TrimSpace(value))) {
	case DispositionProceed:
		return DispositionProceed
	case DispositionReschedule:
		return DispositionReschedule
	case DispositionModify:
		return DispositionModify
	case DispositionCancel:
		return DispositionCancel
	default:
		return ""
	}
}

// composePrompt renders the action and context snapshot into the user prompt
// for the judge.
func composePrompt(action ScheduledAction, snap *contacts.Context) (string, error) {
	actionJSON, err := json.MarshalIndent(promptAction(action), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize action: %w", err)
	}
	contextJSON, err := json.MarshalIndent(promptContext(snap), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize context: %w", err)
	}

	var b strings.Builder
	b.WriteString("Decide whether the following scheduled CRM action is still relevant to execute right now.\n\n")
	b.WriteString("## Scheduled Action\n\n```json\n")
	b.Write(actionJSON)
	b.WriteString("\n```\n\n## Current Contact Context\n\n```json\n")
	b.Write(contextJSON)
	b.WriteString("\n```\n")
	return b.String(), nil
}

func promptAction(action ScheduledAction) map[string]any {
	return map[string]any{
		"type":         action.Type,
		"description":  action.Description,
		"scheduled_at": action.ScheduledAt.Format(time.RFC3339),
		"execute_at":   action.ExecuteAt.Format(time.RFC3339),
		"parameters":   action.Parameters,
		"criteria":     action.Criteria,
		"priority":     action.Priority,
	}
}

func promptContext(snap *contacts.Context) map[string]any {
	data := map[string]any{
		"attributes": snap.Attributes,
	}
	if snap.LastInteraction != nil {
		data["last_interaction"] = snap.LastInteraction.Format(time.RFC3339)
	} else {
		data["last_interaction"] = "none recorded"
	}
	return data
}
