// Package workflow orchestrates the relevance validation pipeline as a
// state graph: snapshot the contact context, evaluate deterministic rules,
// consult the LLM judge when the rules are not confident, then arbitrate
// and record the final result.
package workflow

import (
	"log/slog"

	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/relevance"
)

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Contacts contacts.System
	Rules    *relevance.RuleEngine
	LLM      *relevance.LLMEngine
	Policy   *relevance.PolicyStore
	Trail    *relevance.Trail
	Logger   *slog.Logger
}
