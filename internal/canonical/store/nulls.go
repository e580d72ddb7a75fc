// Package store holds helpers shared by the canonical Postgres stores.
package store

import "time"

// NullString maps the empty string to SQL NULL so COALESCE upserts keep
// known values.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullInt maps zero to SQL NULL.
func NullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// NullTime maps a nil time to SQL NULL.
func NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// NullBool maps a nil flag to SQL NULL.
func NullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
