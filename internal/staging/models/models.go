// Package models holds the staging snapshots produced by the extraction stage.
// They are read-only for the merge engine.
package models

import (
	"strings"
	"time"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Office is one staged office row.
type Office struct {
	ID             domain.StagingID
	Slug           string
	RefKey         string
	Title          string
	Name           string
	Subtitle       string
	OfficeType     string
	Chamber        string
	DistrictType   string
	District       string
	PoliticalScope string
	ElectionScope  string
	State          string
	County         string
	Municipality   string
	Seat           string
	TermLength     int
}

// Address is an inline staged address. It has no identity of its own until the
// address merger resolves it.
type Address struct {
	Line1      string
	Line2      string
	City       string
	County     string
	State      string
	Country    string
	PostalCode string
}

// IsEmpty reports whether the address lacks a street line.
func (a *Address) IsEmpty() bool {
	return a == nil || strings.TrimSpace(a.Line1) == ""
}

// Politician is one staged candidate.
type Politician struct {
	ID               domain.StagingID
	Slug             string
	RefKey           string
	FirstName        string
	MiddleName       string
	LastName         string
	Suffix           string
	PreferredName    string
	Email            string
	Phone            string
	HomeState        string
	Party            string
	ResidenceAddress *Address
	CampaignAddress  *Address
	// TreatExactSlugAsSame is set upstream for sources whose slugs are known
	// to identify people; an exact slug hit is then accepted on its own.
	TreatExactSlugAsSame bool
}

// Race is one staged race. OfficeID refers to a staged office of the same batch.
type Race struct {
	ID                domain.StagingID
	Slug              string
	RefKey            string
	OfficeID          domain.StagingID
	Title             string
	RaceType          string
	VoteType          string
	Party             string
	State             string
	Description       string
	ElectionDate      *time.Time
	IsSpecialElection *bool
	NumElect          int
}

// RaceCandidate is one staged race/politician link.
type RaceCandidate struct {
	RaceID      domain.StagingID
	CandidateID domain.StagingID
	RefKey      string
}

// Batch is the complete staging content of one source for one run.
type Batch struct {
	Offices        []Office
	Politicians    []Politician
	Races          []Race
	RaceCandidates []RaceCandidate
}
