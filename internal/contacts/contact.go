// Package contacts implements the contact domain for Warden. It provides
// contact records, interaction history, and the point-in-time context
// snapshots that relevance validation evaluates against.
package contacts

import (
	"time"

	"github.com/google/uuid"
)

// Contact represents a CRM contact owned by an organization.
type Contact struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          string            `json:"email"`
	Phone          *string           `json:"phone,omitempty"`
	Industry       string            `json:"industry"`
	Attributes     map[string]string `json:"attributes"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Interaction records a single touch point with a contact.
type Interaction struct {
	ID             uuid.UUID `json:"id"`
	ContactID      uuid.UUID `json:"contact_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	AgentID        uuid.UUID `json:"agent_id"`
	Channel        string    `json:"channel"`
	Summary        string    `json:"summary"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// CreateCommand carries the data needed to register a new contact.
type CreateCommand struct {
	OrganizationID uuid.UUID         `json:"organization_id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          string            `json:"email"`
	Phone          *string           `json:"phone,omitempty"`
	Industry       string            `json:"industry"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

// UpdateCommand carries a partial contact update. Nil fields are left
// unchanged; a non-nil Attributes map replaces the stored attributes.
type UpdateCommand struct {
	FirstName  *string           `json:"first_name,omitempty"`
	LastName   *string           `json:"last_name,omitempty"`
	Email      *string           `json:"email,omitempty"`
	Phone      *string           `json:"phone,omitempty"`
	Industry   *string           `json:"industry,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// InteractionCommand carries the data needed to record a contact interaction.
type InteractionCommand struct {
	AgentID    uuid.UUID  `json:"agent_id"`
	Channel    string     `json:"channel"`
	Summary    string     `json:"summary"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}
