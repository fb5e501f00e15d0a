package prompts

import (
	"encoding/json"
	"slices"
)

// Role represents a judgment role that a prompt override targets.
type Role string

// Valid judgment roles.
const (
	RoleRelevance Role = "relevance"
)

var roles = []Role{
	RoleRelevance,
}

// Roles returns the list of valid judgment roles.
func Roles() []Role {
	return roles
}

// UnmarshalJSON validates that the decoded string is a known role value.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Role(raw)
	if !slices.Contains(roles, v) {
		return ErrInvalidRole
	}
	*r = v
	return nil
}

// ParseRole validates a string as a known judgment role.
// Returns ErrInvalidRole if the value is not recognized.
func ParseRole(s string) (Role, error) {
	v := Role(s)
	if !slices.Contains(roles, v) {
		return "", ErrInvalidRole
	}
	return v, nil
}

// Industry identifies an optional vertical-specific prompt profile.
// The empty industry selects the generic profile.
type Industry string

// Industries with dedicated prompt profiles.
const (
	IndustryGeneric    Industry = ""
	IndustryRealEstate Industry = "real_estate"
	IndustryFinance    Industry = "financial_services"
	IndustryInsurance  Industry = "insurance"
)

var industries = []Industry{
	IndustryRealEstate,
	IndustryFinance,
	IndustryInsurance,
}

// Industries returns the list of industries with dedicated prompt profiles.
func Industries() []Industry {
	return industries
}

// NormalizeIndustry maps unknown industries to the generic profile.
func NormalizeIndustry(i Industry) Industry {
	if slices.Contains(industries, i) {
		return i
	}
	return IndustryGeneric
}
