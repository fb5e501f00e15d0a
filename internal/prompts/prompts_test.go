package prompts_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/emma-crm/warden/internal/prompts"
)

func TestParseRole(t *testing.T) {
	role, err := prompts.ParseRole("relevance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != prompts.RoleRelevance {
		t.Errorf("role = %q, want %q", role, prompts.RoleRelevance)
	}

	if _, err := prompts.ParseRole("classification"); !errors.Is(err, prompts.ErrInvalidRole) {
		t.Errorf("error = %v, want ErrInvalidRole", err)
	}
}

func TestRoleUnmarshalJSON(t *testing.T) {
	var role prompts.Role
	if err := json.Unmarshal([]byte(`"relevance"`), &role); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != prompts.RoleRelevance {
		t.Errorf("role = %q, want %q", role, prompts.RoleRelevance)
	}

	if err := json.Unmarshal([]byte(`"unknown"`), &role); !errors.Is(err, prompts.ErrInvalidRole) {
		t.Errorf("error = %v, want ErrInvalidRole", err)
	}
}

func TestNormalizeIndustry(t *testing.T) {
	tests := []struct {
		name  string
		input prompts.Industry
		want  prompts.Industry
	}{
		{"known industry", prompts.IndustryRealEstate, prompts.IndustryRealEstate},
		{"empty industry", prompts.IndustryGeneric, prompts.IndustryGeneric},
		{"unknown industry", "hospitality", prompts.IndustryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.NormalizeIndustry(tt.input); got != tt.want {
				t.Errorf("NormalizeIndustry = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstructions(t *testing.T) {
	text, err := prompts.Instructions(prompts.RoleRelevance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text == "" {
		t.Error("relevance instructions must not be empty")
	}

	if _, err := prompts.Instructions("unknown"); !errors.Is(err, prompts.ErrInvalidRole) {
		t.Errorf("error = %v, want ErrInvalidRole", err)
	}
}

func TestSpec(t *testing.T) {
	spec, err := prompts.Spec(prompts.RoleRelevance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, field := range []string{"isRelevant", "confidenceScore", "reason", "recommendedAction", "alternativeActions"} {
		if !strings.Contains(spec, field) {
			t.Errorf("spec missing field %q", field)
		}
	}

	if _, err := prompts.Spec("unknown"); !errors.Is(err, prompts.ErrInvalidRole) {
		t.Errorf("error = %v, want ErrInvalidRole", err)
	}
}

func TestIndustryProfile(t *testing.T) {
	for _, industry := range prompts.Industries() {
		if prompts.IndustryProfile(industry) == "" {
			t.Errorf("industry %q must have a profile", industry)
		}
	}

	if got := prompts.IndustryProfile(prompts.IndustryGeneric); got != "" {
		t.Errorf("generic profile = %q, want empty", got)
	}
	if got := prompts.IndustryProfile("hospitality"); got != "" {
		t.Errorf("unknown industry profile = %q, want empty", got)
	}
}
