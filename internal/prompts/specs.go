package prompts

const relevanceSpec = `Respond with a JSON object matching this exact structure:

{
  "isRelevant": true,
  "confidenceScore": 0.85,
  "reason": "<explanation>",
  "recommendedAction": "<proceed|reschedule|modify|cancel>",
  "alternativeActions": ["<action type>"]
}

Field constraints:
- isRelevant: Whether the scheduled action is still worth executing given
  the current contact context.
- confidenceScore: Number between 0.0 and 1.0 expressing how certain you
  are of the verdict. Use lower scores when the context is ambiguous or
  incomplete.
- reason: Brief explanation of the verdict grounded in the provided
  context. Always non-empty.
- recommendedAction: What the scheduler should do with this action.
  proceed = execute as planned. reschedule = still relevant but mistimed.
  modify = the intent is right but the content is stale. cancel = the
  action no longer makes sense.
- alternativeActions: Action types that would serve the contact better
  than the original. Empty array when the original should proceed.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Judge only the action provided, not hypothetical future actions
- Base the verdict strictly on the provided context snapshot`

var specs = map[Role]string{
	RoleRelevance: relevanceSpec,
}

// Spec returns the hardcoded response specification for a judgment role.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidRole if the role is not recognized.
func Spec(role Role) (string, error) {
	text, ok := specs[role]
	if !ok {
		return "", ErrInvalidRole
	}
	return text, nil
}
