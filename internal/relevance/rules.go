package relevance

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/internal/contacts"
)

// RuleEngine produces deterministic relevance verdicts by evaluating an
// action's criteria against a contact context snapshot.
type RuleEngine struct {
	evaluator *Evaluator
	logger    *slog.Logger
}

// NewRuleEngine creates a rule engine backed by the given evaluator.
func NewRuleEngine(evaluator *Evaluator, logger *slog.Logger) *RuleEngine {
	return &RuleEngine{
		evaluator: evaluator,
		logger:    logger.With("system", "relevance"),
	}
}

// Evaluate checks every criterion in the map against the snapshot. The
// action is relevant when no criterion fails. Confidence degrades linearly
// with the fraction of failed criteria and never goes below zero. An empty
// criteria map yields a relevant verdict at full confidence.
func (e *RuleEngine) Evaluate(criteria map[string]string, snap *contacts.Context, traceID uuid.UUID) Result {
	result := Result{
		Relevant:   true,
		Confidence: 1.0,
		Reason:     ruleReason(nil),
		Method:     MethodRules,
		CheckedBy:  CheckedBy,
		TraceID:    traceID,
		CheckedAt:  time.Now(),
	}
	if len(criteria) == 0 {
		return result
	}

	names := slices.Sorted(maps.Keys(criteria))
	var failed []string
	for _, name := range names {
		if !e.evaluator.Evaluate(name, criteria[name], snap) {
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		result.Relevant = false
		result.FailedCriteria = failed
		result.Reason = ruleReason(failed)
		e.logger.Info("relevance criteria failed",
			"trace_id", traceID,
			"failed", failed)
	}
	result.Confidence = clampConfidence(1.0 - float64(len(failed))/float64(len(criteria)))
	return result
}
