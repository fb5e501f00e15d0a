package relevance

import (
	"fmt"
	"sync/atomic"
)

// UncertaintyAction decides the fail-safe verdict when validation cannot
// complete normally.
type UncertaintyAction string

// Fail-safe stances. Proceed favors executing possibly stale actions;
// suppress favors holding possibly relevant ones.
const (
	UncertaintyProceed  UncertaintyAction = "proceed"
	UncertaintySuppress UncertaintyAction = "suppress"
)

// Policy is the process-wide validation policy. Policies are immutable
// snapshots; updates replace the whole policy atomically so in-flight
// validations always observe a coherent set of values.
type Policy struct {
	EnableLLM            bool              `json:"enable_llm"`
	MinimumConfidence    float64           `json:"minimum_confidence"`
	DefaultOnUncertainty UncertaintyAction `json:"default_on_uncertainty"`
	EnableAuditLog       bool              `json:"enable_audit_log"`
	BatchConcurrency     int               `json:"batch_concurrency"`
}

// DefaultPolicy returns the policy used when no configuration overrides it.
func DefaultPolicy() Policy {
	return Policy{
		EnableLLM:            true,
		MinimumConfidence:    0.7,
		DefaultOnUncertainty: UncertaintyProceed,
		EnableAuditLog:       true,
		BatchConcurrency:     5,
	}
}

// Validate rejects structurally invalid policies.
func (p Policy) Validate() error {
	if p.MinimumConfidence < 0 || p.MinimumConfidence > 1 {
		return fmt.Errorf("%w: minimum_confidence %v outside [0, 1]", ErrInvalidPolicy, p.MinimumConfidence)
	}
	switch p.DefaultOnUncertainty {
	case UncertaintyProceed, UncertaintySuppress:
	default:
		return fmt.Errorf("%w: unknown default_on_uncertainty %q", ErrInvalidPolicy, p.DefaultOnUncertainty)
	}
	if p.BatchConcurrency < 1 {
		return fmt.Errorf("%w: batch_concurrency %d must be at least 1", ErrInvalidPolicy, p.BatchConcurrency)
	}
	return nil
}

// FailSafeRelevant reports the verdict a synthesized fail-safe result should
// carry under this policy.
func (p Policy) FailSafeRelevant() bool {
	return p.DefaultOnUncertainty != UncertaintySuppress
}

// PolicyStore holds the current policy behind an atomic pointer.
type PolicyStore struct {
	current atomic.Pointer[Policy]
}

// NewPolicyStore creates a store seeded with the given policy. Invalid seeds
// fall back to the default policy.
func NewPolicyStore(p Policy) *PolicyStore {
	s := &PolicyStore{}
	if err := p.Validate(); err != nil {
		fallback := DefaultPolicy()
		s.current.Store(&fallback)
		return s
	}
	s.current.Store(&p)
	return s
}

// Load returns the current policy snapshot.
func (s *PolicyStore) Load() Policy {
	return *s.current.Load()
}

// Swap validates and installs a new policy. On validation failure the
// current policy is left untouched.
func (s *PolicyStore) Swap(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.current.Store(&p)
	return nil
}
