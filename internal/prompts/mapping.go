package prompts

import (
	"net/url"
	"strconv"

	"github.com/emma-crm/warden/pkg/query"
	"github.com/emma-crm/warden/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("role", "Role").
	Project("industry", "Industry").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active")

var defaultSort = query.SortField{
	Field: "Name",
}

// Filters contains optional filtering criteria for prompt queries.
// Nil fields are ignored. Role, Industry, and Active use exact matching.
// Name uses case-insensitive contains matching.
type Filters struct {
	Role     *Role     `json:"role,omitempty"`
	Industry *Industry `json:"industry,omitempty"`
	Name     *string   `json:"name,omitempty"`
	Active   *bool     `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Role", f.Role).
		WhereEquals("Industry", f.Industry).
		WhereContains("Name", f.Name).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("role"); s != "" {
		role := Role(s)
		f.Role = &role
	}

	if i := values.Get("industry"); i != "" {
		industry := Industry(i)
		f.Industry = &industry
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	return f
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Role,
		&p.Industry,
		&p.Instructions,
		&p.Description,
		&p.Active,
	)
	return p, err
}
