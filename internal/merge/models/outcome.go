// Package models holds the values that flow between merge stages: resolution
// outcomes, the per-run arena and run statistics.
package models

import (
	"fmt"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Tier names the resolution step that produced a decision.
type Tier string

const (
	TierEmail       Tier = "email"
	TierPhone       Tier = "phone"
	TierSlugAddress Tier = "slug+address"
	TierSlug        Tier = "slug"
	TierExactSlug   Tier = "exact_slug"
	TierRefKey      Tier = "ref_key"
	TierInsert      Tier = "insert"
)

// Outcome is one of ExactMatch, QuestionableSkipped or NewInsert.
type Outcome interface {
	outcome()
	fmt.Stringer
}

// ExactMatch means the staging record was merged into an existing row.
type ExactMatch struct {
	Tier Tier
}

// QuestionableSkipped means a candidate shared a weak signal but was not
// corroborated. It was audited and left alone.
type QuestionableSkipped struct {
	Tier Tier
}

// NewInsert means a new canonical politician was created.
type NewInsert struct{}

func (ExactMatch) outcome()          {}
func (QuestionableSkipped) outcome() {}
func (NewInsert) outcome()           {}

func (o ExactMatch) String() string          { return "exact_match{" + string(o.Tier) + "}" }
func (o QuestionableSkipped) String() string { return "questionable_skipped{" + string(o.Tier) + "}" }
func (NewInsert) String() string             { return "new_insert" }

// Decision pairs an outcome with the canonical row it concerns. For
// QuestionableSkipped that is the candidate that was not merged.
type Decision struct {
	CanonicalID *domain.PoliticianID
	Outcome     Outcome
}

// Resolved returns the canonical id a staging record ended up as: the target
// of the final ExactMatch or NewInsert. Questionable decisions never resolve.
func Resolved(decisions []Decision) (domain.PoliticianID, bool) {
	for i := len(decisions) - 1; i >= 0; i-- {
		d := decisions[i]
		switch d.Outcome.(type) {
		case ExactMatch, NewInsert:
			if d.CanonicalID != nil {
				return *d.CanonicalID, true
			}
		}
	}
	return domain.PoliticianID{}, false
}

// TierOf returns the tier label carried by o, or TierInsert for NewInsert.
func TierOf(o Outcome) Tier {
	switch v := o.(type) {
	case ExactMatch:
		return v.Tier
	case QuestionableSkipped:
		return v.Tier
	default:
		return TierInsert
	}
}
