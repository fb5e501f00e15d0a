package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/emma-crm/warden/internal/contacts"
	"github.com/emma-crm/warden/internal/relevance"
	"github.com/emma-crm/warden/internal/workflow"
	"github.com/emma-crm/warden/pkg/pagination"
	"github.com/emma-crm/warden/pkg/storage"
)

type validator struct {
	rt         *workflow.Runtime
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a validator implementing the System interface.
func New(
	rt *workflow.Runtime,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &validator{
		rt:         rt,
		storage:    store,
		logger:     logger.With("system", "validation"),
		pagination: pagination,
	}
}

func (v *validator) Handler() *Handler {
	return NewHandler(v, v.logger, v.pagination)
}

// Validate runs the full validation pipeline for one request. It never
// returns an error or panics: any failure degrades to the policy's
// fail-safe verdict at zero confidence, with the failure as the reason.
func (v *validator) Validate(ctx context.Context, req relevance.Request) (result relevance.Result) {
	req.TraceID = ensureTrace(req)

	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("validation panic recovered",
				"trace_id", req.TraceID,
				"panic", r)
			result = v.failsafe(req, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err := workflow.Execute(ctx, v.rt, req)
	if err != nil {
		return v.failsafe(req, err)
	}
	return *res
}

// ValidateBatch validates every request with bounded concurrency. Results
// are returned in input order. Requests without a trace identifier share a
// batch-wide one so the whole batch can be correlated in the audit trail.
func (v *validator) ValidateBatch(ctx context.Context, reqs []relevance.Request) []relevance.Result {
	results := make([]relevance.Result, len(reqs))
	batchTrace := uuid.New()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.rt.Policy.Load().BatchConcurrency)

	for i := range reqs {
		g.Go(func() error {
			req := reqs[i]
			if req.TraceID == uuid.Nil && req.Action.TraceID == uuid.Nil {
				req.TraceID = batchTrace
			}
			results[i] = v.Validate(gctx, req)
			return nil
		})
	}

	// Validate never errors, so Wait only synchronizes the workers.
	_ = g.Wait()

	v.logger.Info("batch validation complete",
		"batch_trace_id", batchTrace,
		"count", len(reqs))
	return results
}

// IsStillRelevant is the boolean convenience form of Validate for callers
// that only need a go/no-go signal.
func (v *validator) IsStillRelevant(ctx context.Context, action relevance.ScheduledAction) bool {
	return v.Validate(ctx, relevance.Request{Action: action, AllowLLM: true}).Relevant
}

// EvaluateCriteria runs only the deterministic rule engine against a
// caller-supplied context snapshot.
func (v *validator) EvaluateCriteria(criteria map[string]string, snap *contacts.Context) relevance.Result {
	snap = normalized(snap)
	return v.rt.Rules.Evaluate(criteria, snap, uuid.New())
}

// ValidateWithLLM runs only the LLM engine against a caller-supplied
// context snapshot. The result degrades internally and never errors.
func (v *validator) ValidateWithLLM(ctx context.Context, action relevance.ScheduledAction, snap *contacts.Context) relevance.Result {
	snap = normalized(snap)
	result := v.rt.LLM.Validate(ctx, action, snap, ensureTrace(relevance.Request{Action: action}))
	result.ActionID = action.ID
	result.ActionType = action.Type
	return result
}

// SuggestAlternatives returns substitute actions for an original that
// should no longer execute.
func (v *validator) SuggestAlternatives(action relevance.ScheduledAction) []relevance.ScheduledAction {
	return relevance.SuggestAlternatives(action)
}

func (v *validator) Policy() relevance.Policy {
	return v.rt.Policy.Load()
}

func (v *validator) UpdatePolicy(p relevance.Policy) error {
	if err := v.rt.Policy.Swap(p); err != nil {
		return err
	}
	v.logger.Info("validation policy updated",
		"enable_llm", p.EnableLLM,
		"minimum_confidence", p.MinimumConfidence,
		"default_on_uncertainty", p.DefaultOnUncertainty,
		"batch_concurrency", p.BatchConcurrency)
	return nil
}

func (v *validator) AuditLog(f relevance.AuditFilters) []relevance.Result {
	return v.rt.Trail.Query(f)
}

// failsafe synthesizes the degraded verdict for a failed validation. The
// result is still audited so suppressed failures remain visible.
func (v *validator) failsafe(req relevance.Request, err error) relevance.Result {
	policy := v.rt.Policy.Load()

	result := relevance.Result{
		ActionID:   req.Action.ID,
		ActionType: req.Action.Type,
		Relevant:   policy.FailSafeRelevant(),
		Confidence: 0.0,
		Reason:     fmt.Sprintf("validation failed: %v", err),
		Method:     relevance.MethodFailsafe,
		CheckedBy:  relevance.CheckedBy,
		TraceID:    req.TraceID,
		CheckedAt:  time.Now(),
	}

	v.logger.Error("validation degraded to fail-safe",
		"trace_id", req.TraceID,
		"action_id", req.Action.ID,
		"is_relevant", result.Relevant,
		"error", err)

	if policy.EnableAuditLog {
		v.rt.Trail.Record(result)
	}
	return result
}

// ensureTrace resolves the trace identifier for a request: an explicit
// request trace wins, then the action's own trace, then a generated one.
func ensureTrace(req relevance.Request) uuid.UUID {
	if req.TraceID != uuid.Nil {
		return req.TraceID
	}
	if req.Action.TraceID != uuid.Nil {
		return req.Action.TraceID
	}
	return uuid.New()
}

func normalized(snap *contacts.Context) *contacts.Context {
	if snap == nil {
		return &contacts.Context{}
	}
	snap = snap.Clone()
	snap.NormalizeAttributes()
	return snap
}
