package relevance

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/emma-crm/warden/internal/contacts"
)

// Known criterion kinds. Criterion names are matched case-insensitively.
const (
	CriterionDealStatus     = "dealstatus"
	CriterionEngagement     = "contactengagement"
	CriterionInteractionAge = "lastinteractionage"
)

// Context attribute keys consulted by the built-in criteria.
const (
	attrDealStatus = "dealstatus"
	attrEngagement = "engagementlevel"
)

// Evaluator evaluates individual relevance criteria against a contact
// context snapshot.
type Evaluator struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewEvaluator creates a criterion evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{
		logger: logger.With("system", "relevance"),
		now:    time.Now,
	}
}

// Evaluate checks a single named criterion against the context snapshot.
// Unknown criterion names pass with a warning so that new criteria can be
// introduced upstream before this validator learns them. A malformed
// expectation is an evaluation error and the criterion fails.
func (e *Evaluator) Evaluate(name, expected string, snap *contacts.Context) bool {
	switch strings.ToLower(name) {
	case CriterionDealStatus:
		return e.matchAttribute(snap, attrDealStatus, expected)
	case CriterionEngagement:
		return e.matchAttribute(snap, attrEngagement, expected)
	case CriterionInteractionAge:
		return e.withinInteractionAge(snap, expected)
	default:
		e.logger.Warn("unknown relevance criterion, passing",
			"criterion", name,
			"expected", expected)
		return true
	}
}

func (e *Evaluator) matchAttribute(snap *contacts.Context, key, expected string) bool {
	actual, ok := snap.Attribute(key)
	if !ok {
		return false
	}
	return strings.EqualFold(actual, expected)
}

// withinInteractionAge passes when the contact's most recent interaction is
// no older than the expected maximum number of days. A contact with no
// recorded interactions fails.
func (e *Evaluator) withinInteractionAge(snap *contacts.Context, expected string) bool {
	maxDays, err := strconv.Atoi(strings.TrimSpace(expected))
	if err != nil || maxDays < 0 {
		e.logger.Error("invalid max-days expectation for interaction age",
			"expected", expected)
		return false
	}
	if snap.LastInteraction == nil {
		return false
	}
	age := e.now().Sub(*snap.LastInteraction)
	return age <= time.Duration(maxDays)*24*time.Hour
}

// ruleReason renders a deterministic explanation for a rule-based verdict.
func ruleReason(failed []string) string {
	if len(failed) == 0 {
		return "all relevance criteria satisfied"
	}
	return fmt.Sprintf("criteria no longer satisfied: %s", strings.Join(failed, ", "))
}
