package workflow

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/emma-crm/warden/internal/relevance"
)

// Execute runs the validation workflow for a single request. It captures the
// policy once so every node observes the same snapshot, builds the state
// graph (context → evaluate → judge? → finalize), executes it, and extracts
// the final Result from the state bag.
func Execute(ctx context.Context, rt *Runtime, req relevance.Request) (*relevance.Result, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyRequest, req)
	initialState = initialState.Set(KeyPolicy, rt.Policy.Load())

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	result, ok, err := extractResult(finalState, KeyResult)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in final state", ErrFinalizeFailed, KeyResult)
	}

	return &result, nil
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("warden-validate")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("context", ContextNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("evaluate", EvaluateNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("judge", JudgeNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	// context → evaluate (unconditional)
	if err := graph.AddEdge("context", "evaluate", nil); err != nil {
		return nil, err
	}

	// evaluate → judge (when the rule verdict is not confident enough)
	if err := graph.AddEdge("evaluate", "judge", needsJudgment); err != nil {
		return nil, err
	}

	// evaluate → finalize (when the rule verdict stands on its own)
	if err := graph.AddEdge("evaluate", "finalize", state.Not(needsJudgment)); err != nil {
		return nil, err
	}

	// judge → finalize (unconditional)
	if err := graph.AddEdge("judge", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("context"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

// needsJudgment gates the LLM path: the request must allow it, the policy
// must enable it, and the rule verdict must fall below the confidence floor.
func needsJudgment(s state.State) bool {
	req, err := extractRequest(s)
	if err != nil || !req.AllowLLM {
		return false
	}

	policy, err := extractPolicy(s)
	if err != nil || !policy.EnableLLM {
		return false
	}

	ruleResult, ok, err := extractResult(s, KeyRuleResult)
	if err != nil || !ok {
		return false
	}

	return ruleResult.Confidence < policy.MinimumConfidence
}
