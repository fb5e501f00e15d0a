package relevance

import (
	"time"

	"github.com/google/uuid"
)

// CheckedBy identifies this validator in audit records.
const CheckedBy = "relevance_validator"

// Method identifies which engine produced a relevance judgment.
type Method string

// Judgment methods.
const (
	MethodRules    Method = "rule_based"
	MethodLLM      Method = "llm"
	MethodFailsafe Method = "fail_safe"
)

// Disposition is the recommended handling for a stale or irrelevant action.
type Disposition string

// Valid dispositions. Only the LLM path populates a disposition.
const (
	DispositionProceed    Disposition = "proceed"
	DispositionReschedule Disposition = "reschedule"
	DispositionModify     Disposition = "modify"
	DispositionCancel     Disposition = "cancel"
)

// Context data keys stamped onto results for audit filtering.
const (
	DataContactID = "contact_id"
	DataCriteria  = "evaluated_criteria"
)

// Result is the decision artifact for one validation call. It is constructed
// once, never mutated after being recorded, and references the action only by
// identifier.
type Result struct {
	ActionID       uuid.UUID         `json:"action_id"`
	ActionType     string            `json:"action_type"`
	Relevant       bool              `json:"is_relevant"`
	Confidence     float64           `json:"confidence"`
	Reason         string            `json:"reason"`
	FailedCriteria []string          `json:"failed_criteria,omitempty"`
	Method         Method            `json:"method"`
	CheckedBy      string            `json:"checked_by"`
	TraceID        uuid.UUID         `json:"trace_id"`
	CheckedAt      time.Time         `json:"checked_at"`
	ContextData    map[string]string `json:"context_data,omitempty"`
	Disposition    Disposition       `json:"disposition,omitempty"`
	Alternatives   []string          `json:"alternatives,omitempty"`
}

// Merge arbitrates between the rule-based and LLM results. The LLM result
// replaces the rule-based one only when its confidence is strictly greater;
// verdicts are never blended because a blended confidence has no clear
// interpretation when the two engines disagree on the boolean verdict.
func Merge(rule, llm Result) Result {
	if llm.Confidence > rule.Confidence {
		return llm
	}
	return rule
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
