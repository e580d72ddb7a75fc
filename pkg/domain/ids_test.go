package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
)

func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseStagingID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseStagingID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseStagingID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseStagingID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, StagingID(validUUID), id)
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE politician;--", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePoliticianID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errOffice := ParseOfficeID(validUUID)
		_, errPolitician := ParsePoliticianID(validUUID)
		_, errRace := ParseRaceID(validUUID)
		_, errAddress := ParseAddressID(validUUID)
		_, errStaging := ParseStagingID(validUUID)

		require.NoError(t, errOffice)
		require.NoError(t, errPolitician)
		require.NoError(t, errRace)
		require.NoError(t, errAddress)
		require.NoError(t, errStaging)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errOffice := ParseOfficeID(input)
			_, errPolitician := ParsePoliticianID(input)
			_, errRace := ParseRaceID(input)
			_, errAddress := ParseAddressID(input)
			_, errStaging := ParseStagingID(input)

			require.Error(t, errOffice)
			require.Error(t, errPolitician)
			require.Error(t, errRace)
			require.Error(t, errAddress)
			require.Error(t, errStaging)
		})
	}
}

func TestIsNil(t *testing.T) {
	assert.True(t, PoliticianID(uuid.Nil).IsNil())
	assert.False(t, NewPoliticianID().IsNil())
}

func TestIDs_MarshalJSON(t *testing.T) {
	raw := uuid.New()
	out, err := json.Marshal(struct {
		ID PoliticianID `json:"id"`
	}{ID: PoliticianID(raw)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+raw.String()+`"}`, string(out))
}
