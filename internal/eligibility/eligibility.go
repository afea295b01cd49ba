// Package eligibility decides whether a voter may vote for a position.
package eligibility

import (
	"slices"
	"strings"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

// Rules applies the level, department and gender restrictions stored on a position.
type Rules struct{}

// NewRules constructs the default eligibility oracle.
func NewRules() *Rules {
	return &Rules{}
}

// IsEligible reports whether voter satisfies every restriction on position.
// Empty level and department lists admit anyone.
func (Rules) IsEligible(voter model.Voter, position model.Position) bool {
	if len(position.EligibleLevels) > 0 && !slices.Contains(position.EligibleLevels, voter.Level) {
		return false
	}
	if len(position.EligibleDepartments) > 0 && !slices.ContainsFunc(position.EligibleDepartments, func(d string) bool {
		return strings.EqualFold(strings.TrimSpace(d), strings.TrimSpace(voter.Department))
	}) {
		return false
	}
	if position.GenderRestricted() && !strings.EqualFold(strings.TrimSpace(position.Gender), strings.TrimSpace(voter.Gender)) {
		return false
	}
	return true
}
