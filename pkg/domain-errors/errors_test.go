package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeMissingRequiredField, "slug is required")
		assert.True(t, HasCode(err, CodeMissingRequiredField))
		assert.False(t, HasCode(err, CodeDatabase))
	})

	t.Run("matches nested code through fmt wrapping", func(t *testing.T) {
		inner := New(CodeReferentialIntegrity, "office not mapped")
		outer := fmt.Errorf("resolve race: %w", Wrap(inner, CodeInternal, "stage failed"))
		assert.True(t, HasCode(outer, CodeReferentialIntegrity))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeDatabase, "ignored"))
}

func TestIsRecordError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"missing field", New(CodeMissingRequiredField, "x"), true},
		{"referential", New(CodeReferentialIntegrity, "x"), true},
		{"invalid input", New(CodeInvalidInput, "x"), true},
		{"database", Wrap(errors.New("conn reset"), CodeDatabase, "x"), false},
		{"uncoded", errors.New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecordError(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(errors.New("connection refused"), CodeDatabase, "upsert office")
	assert.Equal(t, "upsert office: connection refused", err.Error())
	assert.Equal(t, "slug is required", New(CodeMissingRequiredField, "slug is required").Error())
}
