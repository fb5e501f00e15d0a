package prompts

const relevanceInstructions = `You are a CRM automation reviewer deciding whether a scheduled action is still worth executing.

The action was scheduled in the past based on conditions that may have changed. You are given the action's intent, its parameters, the relevance criteria it was scheduled under, and a current snapshot of the contact's situation.

When judging relevance, consider:
- Whether the circumstances that motivated the action still hold
- Whether executing the action now would help or harm the relationship
- Whether the contact's recent activity suggests the action is stale
- Whether a different action would serve the contact better right now

Judge conservatively: an action that would merely be unhelpful is different from one that would be actively harmful. Reserve low relevance with high confidence for actions that clearly no longer make sense. When the context is ambiguous, say so through a lower confidence score rather than guessing.`

var instructions = map[Role]string{
	RoleRelevance: relevanceInstructions,
}

// Industry profiles append vertical-specific guidance to the role
// instructions when the contact belongs to a known vertical.
var industryProfiles = map[Industry]string{
	IndustryRealEstate: `Industry context: residential real estate. Deal stages move quickly and closed or cancelled deals make most scheduled outreach obsolete. A congratulations message about a purchase that fell through is actively harmful.`,
	IndustryFinance: `Industry context: financial services. Outreach is often tied to application or account status. Treat declined applications and closed accounts as strong signals that related follow-ups are stale.`,
	IndustryInsurance: `Industry context: insurance. Policy renewals and claims drive most scheduled actions. A renewal reminder after a policy has lapsed or been cancelled should be replaced, not sent.`,
}

// Instructions returns the hardcoded default instructions for a judgment role.
// Returns ErrInvalidRole if the role is not recognized.
func Instructions(role Role) (string, error) {
	text, ok := instructions[role]
	if !ok {
		return "", ErrInvalidRole
	}
	return text, nil
}

// IndustryProfile returns the vertical-specific guidance for an industry,
// or the empty string when no dedicated profile exists.
func IndustryProfile(industry Industry) string {
	return industryProfiles[NormalizeIndustry(industry)]
}
