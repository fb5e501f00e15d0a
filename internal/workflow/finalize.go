package workflow

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/relevance"
)

// FinalizeNode returns a state node that arbitrates between the rule-based
// and LLM results, stamps the decision artifact with its audit metadata,
// and records it in the trail when the policy enables audit logging.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		snap, err := extractSnapshot(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		policy, err := extractPolicy(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		ruleResult, ok, err := extractResult(s, KeyRuleResult)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}
		if !ok {
			return s, fmt.Errorf("finalize: %w: missing %s in state", ErrFinalizeFailed, KeyRuleResult)
		}

		final := ruleResult
		if llmResult, ok, err := extractResult(s, KeyLLMResult); err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		} else if ok {
			final = relevance.Merge(ruleResult, llmResult)
		}

		final.ActionID = req.Action.ID
		final.ActionType = req.Action.Type
		final.TraceID = req.TraceID
		final.CheckedBy = relevance.CheckedBy
		final.CheckedAt = time.Now()
		final.ContextData = contextData(req.Action, snap)

		if policy.EnableAuditLog {
			rt.Trail.Record(final)
		}

		rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"trace_id", req.TraceID,
			"action_id", final.ActionID,
			"is_relevant", final.Relevant,
			"confidence", final.Confidence,
			"method", final.Method,
		)

		s = s.Set(KeyResult, final)
		return s, nil
	})
}

// contextData captures the audit-relevant context the decision was made
// against: the contact identity and the criteria that were evaluated.
func contextData(action relevance.ScheduledAction, snap contacts.Context) map[string]string {
	data := map[string]string{
		relevance.DataContactID: snap.ContactID.String(),
	}
	if len(action.Criteria) > 0 {
		pairs := make([]string, 0, len(action.Criteria))
		for _, name := range slices.Sorted(maps.Keys(action.Criteria)) {
			pairs = append(pairs, fmt.Sprintf("%s=%s", name, action.Criteria[name]))
		}
		data[relevance.DataCriteria] = strings.Join(pairs, ", ")
	}
	return data
}
