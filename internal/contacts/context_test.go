package contacts_test

import (
	"testing"
	"time"

	"github.com/emma-crm/warden/internal/contacts"
)

func TestContextAttribute(t *testing.T) {
	snap := &contacts.Context{Attributes: map[string]string{"DealStatus": "active"}}
	snap.NormalizeAttributes()

	tests := []struct {
		name   string
		key    string
		want   string
		wantOk bool
	}{
		{"lowercase lookup", "dealstatus", "active", true},
		{"mixed-case lookup", "DealStatus", "active", true},
		{"missing key", "engagementLevel", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := snap.Attribute(tt.key)
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("Attribute(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestContextNormalizeAttributesNil(t *testing.T) {
	snap := &contacts.Context{}
	snap.NormalizeAttributes()
	if snap.Attributes != nil {
		t.Error("normalizing a nil attribute map should leave it nil")
	}
}

func TestContextClone(t *testing.T) {
	last := time.Now()
	snap := &contacts.Context{
		Industry:        "real_estate",
		LastInteraction: &last,
		Attributes:      map[string]string{"dealstatus": "active"},
	}

	clone := snap.Clone()
	clone.Attributes["dealstatus"] = "closed"
	*clone.LastInteraction = last.Add(-time.Hour)

	if snap.Attributes["dealstatus"] != "active" {
		t.Error("clone must not share the attribute map")
	}
	if !snap.LastInteraction.Equal(last) {
		t.Error("clone must not share the interaction timestamp")
	}
	if clone.Industry != snap.Industry {
		t.Errorf("Industry = %q, want %q", clone.Industry, snap.Industry)
	}
}
