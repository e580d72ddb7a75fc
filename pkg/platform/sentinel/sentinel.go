package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so merge services can tell "no such row" apart from infrastructure failure:
// - ErrNotFound: no canonical or staging row matches the lookup
// - ErrConflict: a unique key (slug, ref_key, natural key) is already taken
// - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
