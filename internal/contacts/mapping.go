package contacts

import (
	"encoding/json"
	"net/url"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/pkg/query"
	"github.com/emma-crm/warden/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "contacts", "c").
	Project("id", "ID").
	Project("organization_id", "OrganizationID").
	Project("first_name", "FirstName").
	Project("last_name", "LastName").
	Project("email", "Email").
	Project("phone", "Phone").
	Project("industry", "Industry").
	Project("attributes", "Attributes").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var interactionProjection = query.
	NewProjectionMap("public", "interactions", "i").
	Project("id", "ID").
	Project("contact_id", "ContactID").
	Project("organization_id", "OrganizationID").
	Project("agent_id", "AgentID").
	Project("channel", "Channel").
	Project("summary", "Summary").
	Project("occurred_at", "OccurredAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for contact queries.
// Nil fields are ignored.
type Filters struct {
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Industry       *string    `json:"industry,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("OrganizationID", f.OrganizationID).
		WhereContains("Email", f.Email).
		WhereEquals("Industry", f.Industry)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if org := values.Get("organization_id"); org != "" {
		if v, err := uuid.Parse(org); err == nil {
			f.OrganizationID = &v
		}
	}

	if e := values.Get("email"); e != "" {
		f.Email = &e
	}

	if ind := values.Get("industry"); ind != "" {
		f.Industry = &ind
	}

	return f
}

func scanContact(s repository.Scanner) (Contact, error) {
	var (
		c     Contact
		attrs []byte
	)
	err := s.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Industry,
		&attrs,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
			return c, err
		}
		c.Attributes = normalizeAttributes(c.Attributes)
	}
	return c, nil
}

func scanInteraction(s repository.Scanner) (Interaction, error) {
	var i Interaction
	err := s.Scan(
		&i.ID,
		&i.ContactID,
		&i.OrganizationID,
		&i.AgentID,
		&i.Channel,
		&i.Summary,
		&i.OccurredAt,
	)
	return i, err
}
