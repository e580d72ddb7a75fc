package models

import (
	"time"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Politician is one real person. Invariant: no two rows represent the same
// person. Slug is not unique; RefKey is unique when set.
type Politician struct {
	ID                 domain.PoliticianID
	Slug               string
	RefKey             string
	FirstName          string
	MiddleName         string
	LastName           string
	Suffix             string
	PreferredName      string
	Email              string
	Phone              string
	HomeState          string
	Party              string
	ResidenceAddressID *domain.AddressID
	CampaignAddressID  *domain.AddressID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MergeFrom applies a matched staging snapshot with COALESCE semantics. Slug
// never changes on update, and an existing RefKey is kept because it belongs
// to the source that created the row.
func (p *Politician) MergeFrom(in Politician) {
	p.RefKey = CoalesceString(p.RefKey, in.RefKey)
	p.FirstName = CoalesceString(in.FirstName, p.FirstName)
	p.MiddleName = CoalesceString(in.MiddleName, p.MiddleName)
	p.LastName = CoalesceString(in.LastName, p.LastName)
	p.Suffix = CoalesceString(in.Suffix, p.Suffix)
	p.PreferredName = CoalesceString(in.PreferredName, p.PreferredName)
	p.Email = CoalesceString(in.Email, p.Email)
	p.Phone = CoalesceString(in.Phone, p.Phone)
	p.HomeState = CoalesceString(in.HomeState, p.HomeState)
	p.Party = CoalesceString(in.Party, p.Party)
	if in.ResidenceAddressID != nil {
		p.ResidenceAddressID = in.ResidenceAddressID
	}
	if in.CampaignAddressID != nil {
		p.CampaignAddressID = in.CampaignAddressID
	}
}

// FullName joins the known name parts for logs and summaries.
func (p Politician) FullName() string {
	first := CoalesceString(p.PreferredName, p.FirstName)
	name := first
	for _, part := range []string{p.MiddleName, p.LastName, p.Suffix} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}
