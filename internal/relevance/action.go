// Package relevance implements the action relevance domain for Warden:
// criterion evaluation, rule-based and LLM-based judgment engines, result
// arbitration, alternative action suggestion, and the bounded audit trail.
package relevance

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/internal/contacts"
)

// ScheduledAction is an automated action created by the upstream scheduler,
// awaiting execution. Warden never mutates a scheduled action in place; the
// only actions it constructs are alternative suggestions cloned from an
// original.
type ScheduledAction struct {
	ID             uuid.UUID         `json:"id"`
	Type           string            `json:"type"`
	Description    string            `json:"description"`
	ContactID      uuid.UUID         `json:"contact_id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	ScheduledBy    uuid.UUID         `json:"scheduled_by"`
	ScheduledAt    time.Time         `json:"scheduled_at"`
	ExecuteAt      time.Time         `json:"execute_at"`
	Parameters     map[string]string `json:"parameters,omitempty"`
	Criteria       map[string]string `json:"criteria,omitempty"`
	Priority       int               `json:"priority"`
	TraceID        uuid.UUID         `json:"trace_id,omitempty"`
}

// Request bundles a scheduled action with optional pre-fetched context for a
// single validation call. When Context is nil, a fresh snapshot is fetched
// from the contact store. A zero TraceID is replaced with a generated one.
type Request struct {
	Action   ScheduledAction   `json:"action"`
	Context  *contacts.Context `json:"context,omitempty"`
	AllowLLM bool              `json:"allow_llm"`
	TraceID  uuid.UUID         `json:"trace_id,omitempty"`
}

// cloneAction copies an action with a new identity and execution time,
// sharing no map state with the original.
func cloneAction(original ScheduledAction, actionType, description string, executeAt time.Time) ScheduledAction {
	return ScheduledAction{
		ID:             uuid.New(),
		Type:           actionType,
		Description:    description,
		ContactID:      original.ContactID,
		OrganizationID: original.OrganizationID,
		ScheduledBy:    original.ScheduledBy,
		ScheduledAt:    time.Now(),
		ExecuteAt:      executeAt,
		Parameters:     maps.Clone(original.Parameters),
		Criteria:       maps.Clone(original.Criteria),
		Priority:       original.Priority,
		TraceID:        original.TraceID,
	}
}
