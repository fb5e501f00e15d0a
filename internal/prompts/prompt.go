// Package prompts implements the prompt override domain for Warden.
// It provides types, data access, and HTTP handlers for managing named
// prompt instruction overrides per judgment role, optionally scoped to
// an industry profile.
package prompts

import "github.com/google/uuid"

// Prompt represents a named instruction override for a judgment role.
// Industry scopes the override to a vertical; the empty industry applies
// to all contacts without a more specific override.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Industry     Industry  `json:"industry"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a new prompt override.
type CreateCommand struct {
	Name         string   `json:"name"`
	Role         Role     `json:"role"`
	Industry     Industry `json:"industry"`
	Instructions string   `json:"instructions"`
	Description  *string  `json:"description"`
}

// UpdateCommand carries the data needed to update an existing prompt override.
type UpdateCommand struct {
	Name         string   `json:"name"`
	Role         Role     `json:"role"`
	Industry     Industry `json:"industry"`
	Instructions string   `json:"instructions"`
	Description  *string  `json:"description"`
}
