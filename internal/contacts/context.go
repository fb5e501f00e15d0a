package contacts

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Context is a point-in-time snapshot of everything relevance validation
// needs to know about a contact. Attribute keys are normalized to lowercase
// so criterion lookups are case-insensitive.
type Context struct {
	ContactID       uuid.UUID         `json:"contact_id"`
	OrganizationID  uuid.UUID         `json:"organization_id"`
	Industry        string            `json:"industry,omitempty"`
	LastInteraction *time.Time        `json:"last_interaction,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	FetchedAt       time.Time         `json:"fetched_at"`
}

// Attribute looks up a context attribute by case-insensitive key.
func (c *Context) Attribute(key string) (string, bool) {
	v, ok := c.Attributes[strings.ToLower(key)]
	return v, ok
}

// NormalizeAttributes lowercases the attribute keys in place. Callers that
// construct a Context by hand (instead of fetching a snapshot) should call
// this before evaluation.
func (c *Context) NormalizeAttributes() {
	if len(c.Attributes) == 0 {
		return
	}
	normalized := make(map[string]string, len(c.Attributes))
	for k, v := range c.Attributes {
		normalized[strings.ToLower(k)] = v
	}
	c.Attributes = normalized
}

func normalizeAttributes(attrs map[string]string) map[string]string {
	normalized := make(map[string]string, len(attrs))
	for k, v := range attrs {
		normalized[strings.ToLower(k)] = v
	}
	return normalized
}

// Clone returns a deep copy of the snapshot.
func (c *Context) Clone() *Context {
	clone := *c
	clone.Attributes = maps.Clone(c.Attributes)
	if c.LastInteraction != nil {
		t := *c.LastInteraction
		clone.LastInteraction = &t
	}
	return &clone
}
