package normalize

import "strings"

// AddressKey is the natural key of a canonical address. Two addresses with the
// same key are the same row. Postal codes are not part of the key.
type AddressKey struct {
	Line1   string
	City    string
	State   string
	Country string
}

// NewAddressKey builds the natural key from raw address parts. An empty
// country defaults to DefaultCountry.
func NewAddressKey(line1, city, state, country string) AddressKey {
	country = strings.TrimSpace(country)
	if country == "" {
		country = DefaultCountry
	}
	return AddressKey{
		Line1:   Text(line1),
		City:    Text(city),
		State:   Text(state),
		Country: Text(country),
	}
}

// IsZero reports whether the key has no street line, which makes it unusable
// for dedup.
func (k AddressKey) IsZero() bool {
	return k.Line1 == ""
}

// SameResidence compares the parts used for identity corroboration: line 1,
// city and state. Both sides must have a street line.
func SameResidence(a, b AddressKey) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return a.Line1 == b.Line1 && a.City == b.City && a.State == b.State
}

// PostalCode trims a postal code to its first five characters so ZIP+4 and
// ZIP store the same value.
func PostalCode(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
