package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/emma-crm/warden/internal/relevance"
)

// EvaluateNode returns a state node that runs the deterministic rule engine
// against the action's criteria and the context snapshot.
func EvaluateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("evaluate: %w", err)
		}

		snap, err := extractSnapshot(s)
		if err != nil {
			return s, fmt.Errorf("evaluate: %w", err)
		}

		result := rt.Rules.Evaluate(req.Action.Criteria, &snap, req.TraceID)

		rt.Logger.InfoContext(
			ctx, "evaluate node complete",
			"trace_id", req.TraceID,
			"is_relevant", result.Relevant,
			"confidence", result.Confidence,
		)

		s = s.Set(KeyRuleResult, result)
		return s, nil
	})
}

func extractResult(s state.State, key string) (relevance.Result, bool, error) {
	val, ok := s.Get(key)
	if !ok {
		return relevance.Result{}, false, nil
	}

	result, ok := val.(relevance.Result)
	if !ok {
		return relevance.Result{}, false, fmt.Errorf("%w: %s is not relevance.Result", ErrFinalizeFailed, key)
	}

	return result, true, nil
}
