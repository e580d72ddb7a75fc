package models

import (
	"time"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Office is a political office in the canonical registry, e.g. "State Senate
// District 4". Invariant: Slug is globally unique. Attributes only ever move
// from unknown to known; an empty string or zero means unknown.
type Office struct {
	ID             domain.OfficeID
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
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MergeFrom applies incoming attributes with COALESCE semantics: a known
// incoming value replaces the current one, an unknown one keeps it.
func (o *Office) MergeFrom(in Office) {
	o.RefKey = CoalesceString(o.RefKey, in.RefKey)
	o.Title = CoalesceString(in.Title, o.Title)
	o.Name = CoalesceString(in.Name, o.Name)
	o.Subtitle = CoalesceString(in.Subtitle, o.Subtitle)
	o.OfficeType = CoalesceString(in.OfficeType, o.OfficeType)
	o.Chamber = CoalesceString(in.Chamber, o.Chamber)
	o.DistrictType = CoalesceString(in.DistrictType, o.DistrictType)
	o.District = CoalesceString(in.District, o.District)
	o.PoliticalScope = CoalesceString(in.PoliticalScope, o.PoliticalScope)
	o.ElectionScope = CoalesceString(in.ElectionScope, o.ElectionScope)
	o.State = CoalesceString(in.State, o.State)
	o.County = CoalesceString(in.County, o.County)
	o.Municipality = CoalesceString(in.Municipality, o.Municipality)
	o.Seat = CoalesceString(in.Seat, o.Seat)
	o.TermLength = CoalesceInt(in.TermLength, o.TermLength)
}
