package relevance_test

import (
	"errors"
	"testing"

	"github.com/emma-crm/warden/internal/relevance"
)

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*relevance.Policy)
		wantErr bool
	}{
		{"default policy", func(p *relevance.Policy) {}, false},
		{"suppress stance", func(p *relevance.Policy) { p.DefaultOnUncertainty = relevance.UncertaintySuppress }, false},
		{"confidence below range", func(p *relevance.Policy) { p.MinimumConfidence = -0.1 }, true},
		{"confidence above range", func(p *relevance.Policy) { p.MinimumConfidence = 1.5 }, true},
		{"unknown uncertainty action", func(p *relevance.Policy) { p.DefaultOnUncertainty = "panic" }, true},
		{"zero batch concurrency", func(p *relevance.Policy) { p.BatchConcurrency = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := relevance.DefaultPolicy()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, relevance.ErrInvalidPolicy) {
					t.Errorf("error = %v, want ErrInvalidPolicy", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPolicyFailSafeRelevant(t *testing.T) {
	p := relevance.DefaultPolicy()
	if !p.FailSafeRelevant() {
		t.Error("proceed stance should fail open")
	}

	p.DefaultOnUncertainty = relevance.UncertaintySuppress
	if p.FailSafeRelevant() {
		t.Error("suppress stance should fail closed")
	}
}

func TestPolicyStoreSwap(t *testing.T) {
	store := relevance.NewPolicyStore(relevance.DefaultPolicy())

	updated := relevance.DefaultPolicy()
	updated.MinimumConfidence = 0.9
	if err := store.Swap(updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Load().MinimumConfidence; got != 0.9 {
		t.Errorf("MinimumConfidence = %v, want 0.9", got)
	}
}

func TestPolicyStoreSwapRejectsInvalid(t *testing.T) {
	store := relevance.NewPolicyStore(relevance.DefaultPolicy())

	invalid := relevance.DefaultPolicy()
	invalid.BatchConcurrency = -1
	if err := store.Swap(invalid); err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if got := store.Load().BatchConcurrency; got != relevance.DefaultPolicy().BatchConcurrency {
		t.Errorf("BatchConcurrency = %d, want the previous policy retained", got)
	}
}

func TestNewPolicyStoreInvalidSeedFallsBack(t *testing.T) {
	invalid := relevance.Policy{MinimumConfidence: 7}
	store := relevance.NewPolicyStore(invalid)

	if got := store.Load(); got != relevance.DefaultPolicy() {
		t.Errorf("Load = %+v, want the default policy", got)
	}
}
