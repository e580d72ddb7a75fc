package models

// Stage names one orchestrator stage. Values double as metric labels.
type Stage string

const (
	StageOffices     Stage = "offices"
	StagePoliticians Stage = "politicians"
	StageRaces       Stage = "races"
	StageLinks       Stage = "links"
	StageTruncate    Stage = "truncate"
)

// LinkOutcome is the result of linking one staged race candidate.
type LinkOutcome string

const (
	LinkInserted LinkOutcome = "inserted"
	LinkExisting LinkOutcome = "existing"
	// LinkSkipped: the staged politician never resolved to a canonical id,
	// e.g. after a per-record error.
	LinkSkipped LinkOutcome = "skipped"
)
