// Package source describes the ingestion sources the merge engine knows about.
package source

import (
	"regexp"
	"sort"
	"strings"

	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
)

// SlugPolicy decides what the insert tier does when a new politician's slug is
// already taken.
type SlugPolicy string

const (
	// SlugPolicyDisambiguate appends -1, -2, … until the slug is free.
	SlugPolicyDisambiguate SlugPolicy = "disambiguate"
	// SlugPolicyAcceptCollision keeps the staged slug and records an
	// inserted_with_slug_collision audit note when slug candidates existed.
	SlugPolicyAcceptCollision SlugPolicy = "accept_collision"
)

// Source is one ingestion source scoped to one election cycle.
type Source struct {
	// Key is the CLI name ("mn", "tx").
	Key string
	// ID qualifies ref_keys and audit rows, e.g. "mn-sos-2024".
	ID    string
	Name  string
	State string
	// Namespace prefixes the staging tables: staging.<Namespace>_politician.
	Namespace  string
	SlugPolicy SlugPolicy
	// HonorExactSlugFlag lets the staged "treat exact slug as same person"
	// flag take effect. Sources without it ignore the flag.
	HonorExactSlugFlag bool
}

var namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,47}$`)

// Validate checks the invariants the stores rely on.
func (s Source) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "source id is required")
	}
	if !namespacePattern.MatchString(s.Namespace) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "invalid staging namespace %q", s.Namespace)
	}
	switch s.SlugPolicy {
	case SlugPolicyDisambiguate, SlugPolicyAcceptCollision:
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown slug policy %q", s.SlugPolicy)
	}
	return nil
}

// RefKey synthesizes the stable "source-id|slug" key for a staged record that
// arrived without one.
func (s Source) RefKey(slug string) string {
	return s.ID + "|" + strings.ToLower(strings.TrimSpace(slug))
}

var known = map[string]Source{
	"mn": {
		Key:        "mn",
		ID:         "mn-sos-2024",
		Name:       "Minnesota Secretary of State candidate filings",
		State:      "MN",
		Namespace:  "mn_sos_candidates_2024",
		SlugPolicy: SlugPolicyDisambiguate,
	},
	"tx": {
		Key:                "tx",
		ID:                 "tx-sos-2024",
		Name:               "Texas Secretary of State candidate filings",
		State:              "TX",
		Namespace:          "tx_sos_candidates_2024",
		SlugPolicy:         SlugPolicyDisambiguate,
		HonorExactSlugFlag: true,
	},
	"co": {
		Key:        "co",
		ID:         "co-sos-2024",
		Name:       "Colorado Secretary of State candidate filings",
		State:      "CO",
		Namespace:  "co_sos_candidates_2024",
		SlugPolicy: SlugPolicyAcceptCollision,
	},
}

// Lookup returns the source registered under key.
func Lookup(key string) (Source, error) {
	s, ok := known[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Source{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown source %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return s, nil
}

// Keys lists registered source keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(known))
	for k := range known {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
