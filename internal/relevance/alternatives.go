package relevance

import "time"

// alternativeDelay is how far out a suggested substitute is scheduled.
const alternativeDelay = time.Hour

type alternative struct {
	actionType  string
	description string
}

// alternativeCatalog maps original action types to their substitutes. The
// mapping is intentionally static so that suggestions stay deterministic and
// reviewable.
var alternativeCatalog = map[string][]alternative{
	"congrats_email": {
		{"follow_up_email", "Follow up on the contact's recent milestone"},
	},
	"appointment_reminder": {
		{"reschedule_request", "Offer the contact a new appointment time"},
	},
	"property_recommendation": {
		{"market_update", "Share a current market update with the contact"},
	},
}

// SuggestAlternatives returns substitute actions for an original that is no
// longer relevant. Each suggestion gets a fresh identity, inherits the
// original's contact, organization, scheduler, parameters and priority, and
// is scheduled one hour out. Unknown action types yield no suggestions.
func SuggestAlternatives(original ScheduledAction) []ScheduledAction {
	catalog, ok := alternativeCatalog[original.Type]
	if !ok {
		return nil
	}
	executeAt := time.Now().Add(alternativeDelay)
	suggestions := make([]ScheduledAction, 0, len(catalog))
	for _, alt := range catalog {
		suggestions = append(suggestions, cloneAction(original, alt.actionType, alt.description, executeAt))
	}
	return suggestions
}
