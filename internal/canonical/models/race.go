package models

import (
	"time"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Race references exactly one office. Invariant: Slug is globally unique.
type Race struct {
	ID                domain.RaceID
	Slug              string
	RefKey            string
	OfficeID          domain.OfficeID
	Title             string
	RaceType          string
	VoteType          string
	Party             string
	State             string
	Description       string
	ElectionDate      *time.Time
	IsSpecialElection *bool
	NumElect          int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MergeFrom applies incoming attributes with COALESCE semantics. The office
// reference always follows the incoming record since it was resolved for this
// run. A nil IsSpecialElection means the source did not say and keeps the
// stored value; an explicit false clears an earlier true.
func (r *Race) MergeFrom(in Race) {
	r.RefKey = CoalesceString(r.RefKey, in.RefKey)
	if !in.OfficeID.IsNil() {
		r.OfficeID = in.OfficeID
	}
	r.Title = CoalesceString(in.Title, r.Title)
	r.RaceType = CoalesceString(in.RaceType, r.RaceType)
	r.VoteType = CoalesceString(in.VoteType, r.VoteType)
	r.Party = CoalesceString(in.Party, r.Party)
	r.State = CoalesceString(in.State, r.State)
	r.Description = CoalesceString(in.Description, r.Description)
	if in.ElectionDate != nil {
		r.ElectionDate = in.ElectionDate
	}
	if in.IsSpecialElection != nil {
		r.IsSpecialElection = in.IsSpecialElection
	}
	r.NumElect = CoalesceInt(in.NumElect, r.NumElect)
}

// RaceCandidate links a politician to a race. (RaceID, CandidateID) is the
// key; RefKey optionally guards re-runs.
type RaceCandidate struct {
	RaceID      domain.RaceID
	CandidateID domain.PoliticianID
	RefKey      string
	CreatedAt   time.Time
}
