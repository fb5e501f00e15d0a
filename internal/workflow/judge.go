package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// JudgeNode returns a state node that consults the LLM engine for a second
// opinion. The engine degrades internally, so this node never fails the
// workflow on model or parse errors.
func JudgeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("judge: %w", err)
		}

		snap, err := extractSnapshot(s)
		if err != nil {
			return s, fmt.Errorf("judge: %w", err)
		}

		result := rt.LLM.Validate(ctx, req.Action, &snap, req.TraceID)

		rt.Logger.InfoContext(
			ctx, "judge node complete",
			"trace_id", req.TraceID,
			"is_relevant", result.Relevant,
			"confidence", result.Confidence,
			"disposition", result.Disposition,
		)

		s = s.Set(KeyLLMResult, result)
		return s, nil
	})
}
