// Package validation exposes the action relevance validator: the total,
// never-failing entry point that upstream schedulers call before executing
// an automated action.
package validation

import (
	"context"

	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/relevance"
)

// System defines the public contract for validation operations. Validation
// methods return a Result in every case; failures inside the pipeline
// degrade to a fail-safe verdict instead of an error.
type System interface {
	Handler() *Handler

	Validate(ctx context.Context, req relevance.Request) relevance.Result
	ValidateBatch(ctx context.Context, reqs []relevance.Request) []relevance.Result
	IsStillRelevant(ctx context.Context, action relevance.ScheduledAction) bool

	EvaluateCriteria(criteria map[string]string, snap *contacts.Context) relevance.Result
	ValidateWithLLM(ctx context.Context, action relevance.ScheduledAction, snap *contacts.Context) relevance.Result
	SuggestAlternatives(action relevance.ScheduledAction) []relevance.ScheduledAction

	Policy() relevance.Policy
	UpdatePolicy(p relevance.Policy) error

	AuditLog(f relevance.AuditFilters) []relevance.Result
	ExportAudit(ctx context.Context) (string, error)
}
