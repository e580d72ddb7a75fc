package models

import (
	"time"

	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
)

// Address is never duplicated: its natural key is unique. Politicians refer to
// it by id without owning it.
type Address struct {
	ID         domain.AddressID
	Line1      string
	Line2      string
	City       string
	County     string
	State      string
	Country    string
	PostalCode string
	CreatedAt  time.Time
}

// Key returns the natural key.
func (a Address) Key() normalize.AddressKey {
	return normalize.NewAddressKey(a.Line1, a.City, a.State, a.Country)
}
