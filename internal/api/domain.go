package api

import (
	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/prompts"
	"github.com/emma-crm/warden/internal/relevance"
	"github.com/emma-crm/warden/internal/validation"
	"github.com/emma-crm/warden/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Contacts   contacts.System
	Prompts    prompts.System
	Validation validation.System
}

// NewDomain creates all domain systems from the API runtime. The validation
// system is assembled last: its workflow runtime wires the rule and LLM
// engines to the contact store, policy store, and audit trail.
func NewDomain(runtime *Runtime) *Domain {
	contactsSystem := contacts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	evaluator := relevance.NewEvaluator(runtime.Logger)
	judge := workflow.NewAgentJudge(runtime.Agent)

	wf := &workflow.Runtime{
		Contacts: contactsSystem,
		Rules:    relevance.NewRuleEngine(evaluator, runtime.Logger),
		LLM:      relevance.NewLLMEngine(judge, promptsSystem, runtime.Logger),
		Policy:   relevance.NewPolicyStore(runtime.Policy),
		Trail:    relevance.NewTrail(runtime.AuditCapacity),
		Logger:   runtime.Logger,
	}

	validationSystem := validation.New(
		wf,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Contacts:   contactsSystem,
		Prompts:    promptsSystem,
		Validation: validationSystem,
	}
}
