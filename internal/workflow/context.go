package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/relevance"
)

// ContextNode returns a state node that resolves the contact context
// snapshot for the request. A caller-supplied snapshot is normalized and
// used as-is; otherwise a fresh snapshot is fetched from the contact store.
func ContextNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("context: %w", err)
		}

		snap := req.Context
		if snap != nil {
			snap = snap.Clone()
			snap.NormalizeAttributes()
		} else {
			snap, err = rt.Contacts.Snapshot(ctx, req.Action.ContactID, req.Action.OrganizationID)
			if err != nil {
				return s, fmt.Errorf("context: %w: %w", relevance.ErrContextFetch, err)
			}
		}

		rt.Logger.InfoContext(
			ctx, "context node complete",
			"trace_id", req.TraceID,
			"contact_id", snap.ContactID,
			"attribute_count", len(snap.Attributes),
		)

		s = s.Set(KeySnapshot, *snap)
		return s, nil
	})
}

func extractRequest(s state.State) (relevance.Request, error) {
	val, ok := s.Get(KeyRequest)
	if !ok {
		return relevance.Request{}, fmt.Errorf("%w: missing %s in state", ErrContextFailed, KeyRequest)
	}

	req, ok := val.(relevance.Request)
	if !ok {
		return relevance.Request{}, fmt.Errorf("%w: %s is not relevance.Request", ErrContextFailed, KeyRequest)
	}

	return req, nil
}

func extractSnapshot(s state.State) (contacts.Context, error) {
	val, ok := s.Get(KeySnapshot)
	if !ok {
		return contacts.Context{}, fmt.Errorf("%w: missing %s in state", ErrEvaluateFailed, KeySnapshot)
	}

	snap, ok := val.(contacts.Context)
	if !ok {
		return contacts.Context{}, fmt.Errorf("%w: %s is not contacts.Context", ErrEvaluateFailed, KeySnapshot)
	}

	return snap, nil
}

func extractPolicy(s state.State) (relevance.Policy, error) {
	val, ok := s.Get(KeyPolicy)
	if !ok {
		return relevance.Policy{}, fmt.Errorf("%w: missing %s in state", ErrFinalizeFailed, KeyPolicy)
	}

	policy, ok := val.(relevance.Policy)
	if !ok {
		return relevance.Policy{}, fmt.Errorf("%w: %s is not relevance.Policy", ErrFinalizeFailed, KeyPolicy)
	}

	return policy, nil
}
