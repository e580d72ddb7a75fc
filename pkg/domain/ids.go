package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
)

// Typed identifiers keep canonical ids from different tables, and staging ids
// from canonical ids, from being passed for one another.
type (
	OfficeID     uuid.UUID
	PoliticianID uuid.UUID
	RaceID       uuid.UUID
	AddressID    uuid.UUID
	// StagingID is the source-local id of any staging row.
	StagingID uuid.UUID
	// RunID identifies one orchestrator invocation in the audit log.
	RunID uuid.UUID
)

func (id OfficeID) String() string     { return uuid.UUID(id).String() }
func (id PoliticianID) String() string { return uuid.UUID(id).String() }
func (id RaceID) String() string       { return uuid.UUID(id).String() }
func (id AddressID) String() string    { return uuid.UUID(id).String() }
func (id StagingID) String() string    { return uuid.UUID(id).String() }
func (id RunID) String() string        { return uuid.UUID(id).String() }

func (id OfficeID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PoliticianID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RaceID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AddressID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id StagingID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps ids readable in JSON snapshots.
func (id OfficeID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id PoliticianID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id RaceID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id AddressID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id StagingID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id RunID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }

func NewOfficeID() OfficeID         { return OfficeID(uuid.New()) }
func NewPoliticianID() PoliticianID { return PoliticianID(uuid.New()) }
func NewRaceID() RaceID             { return RaceID(uuid.New()) }
func NewAddressID() AddressID       { return AddressID(uuid.New()) }
func NewRunID() RunID               { return RunID(uuid.New()) }

func ParseOfficeID(s string) (OfficeID, error) {
	u, err := parseUUID(s, "office id")
	return OfficeID(u), err
}

func ParsePoliticianID(s string) (PoliticianID, error) {
	u, err := parseUUID(s, "politician id")
	return PoliticianID(u), err
}

func ParseRaceID(s string) (RaceID, error) {
	u, err := parseUUID(s, "race id")
	return RaceID(u), err
}

func ParseAddressID(s string) (AddressID, error) {
	u, err := parseUUID(s, "address id")
	return AddressID(u), err
}

func ParseStagingID(s string) (StagingID, error) {
	u, err := parseUUID(s, "staging id")
	return StagingID(u), err
}

// parseUUID enforces that ids crossing a trust boundary are valid, non-nil
// UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s format", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be nil", what)
	}
	return u, nil
}
