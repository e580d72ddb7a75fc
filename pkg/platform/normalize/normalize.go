// Package normalize holds the pure normalization functions shared by the
// matching tiers and the insertion path. Every comparison of slugs, emails,
// phones and addresses goes through here.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCountry is assumed for addresses that omit a country.
const DefaultCountry = "US"

// StripDiacritics folds accented letters to their base form ("Peña" -> "Pena").
// Input that cannot be transformed is returned unchanged.
func StripDiacritics(s string) string {
	// transform.Chain is stateful; build one per call so workers can share
	// this function.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Text trims, lowercases, strips diacritics and collapses inner whitespace.
//
// Example:
//
//	Text("  123  Main\tSt ") // "123 main st"
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(StripDiacritics(s))), " ")
}

// Email returns the comparison form of an email: trimmed and lowercased.
// Blank input yields "".
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone reduces a phone number to its digits. A leading US country code on an
// 11-digit number is dropped so "+1 (651) 555-1234" and "651-555-1234" compare
// equal.
func Phone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

// Slug trims and lowercases a slug.
func Slug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BaseSlug strips a trailing "-<digits>" suffix.
//
// Example:
//
//	BaseSlug("jane-doe-2") // "jane-doe"
//	BaseSlug("jane-doe")   // "jane-doe"
func BaseSlug(slug string) string {
	slug = Slug(slug)
	i := strings.LastIndexByte(slug, '-')
	if i <= 0 || i == len(slug)-1 {
		return slug
	}
	if !allDigits(slug[i+1:]) {
		return slug
	}
	return slug[:i]
}

// IsNumberedVariant reports whether slug is base itself or base followed by
// "-<digits>".
func IsNumberedVariant(slug, base string) bool {
	slug, base = Slug(slug), Slug(base)
	if slug == base {
		return true
	}
	if !strings.HasPrefix(slug, base+"-") {
		return false
	}
	return allDigits(slug[len(base)+1:])
}

// SlugsCompatible reports whether two slugs plausibly name the same person:
// they are equal, or one is the other with a numeric suffix appended
// ("jane-doe" vs "jane-doe-1"). Two different numbered variants of the same
// base ("jane-doe-1" vs "jane-doe-2") are not compatible.
func SlugsCompatible(a, b string) bool {
	a, b = Slug(a), Slug(b)
	if a == "" || b == "" {
		return false
	}
	return IsNumberedVariant(a, b) || IsNumberedVariant(b, a)
}

// State normalizes a two-letter state code for comparison.
func State(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// StatesConflict reports whether two home states are both known and differ.
func StatesConflict(a, b string) bool {
	a, b = State(a), State(b)
	return a != "" && b != "" && a != b
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
