package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeProviderErr struct {
	kind string
}

func (e *fakeProviderErr) Error() string       { return "provider failed: " + e.kind }
func (e *fakeProviderErr) FailureType() string { return e.kind }

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "[2000] Unknown chunking strategy: bogus", NewUnknownStrategy("bogus").Error())
	assert.Equal(t, "[1001] Invalid parameters", New(ErrInvalidParams).Error())

	wrapped := Wrap(context.DeadlineExceeded, ErrProviderUnavailable)
	assert.Contains(t, wrapped.Error(), "context deadline exceeded")
}

func TestWrap_PreservesChain(t *testing.T) {
	base := stderrors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(base, ErrInternal))

	assert.True(t, Is(err, ErrInternal))
	assert.True(t, stderrors.Is(err, base))
	assert.Equal(t, ErrInternal, ExtractCode(err))
	assert.Nil(t, Wrap(nil, ErrInternal))
}

func TestWrap_KeepsExistingCode(t *testing.T) {
	inner := New(ErrPatternInvalid, "(")
	out := Wrap(inner, ErrInternal)
	assert.Equal(t, ErrPatternInvalid, out.Code)

	withDetail := Wrap(inner, ErrInternal, "speaker pattern")
	assert.Equal(t, ErrPatternInvalid, withDetail.Code)
	assert.Equal(t, "speaker pattern", withDetail.Details)
	assert.Equal(t, "(", inner.Details)
}

func TestFromProvider(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed", &fakeProviderErr{kind: "malformed_response"}, ErrMalformedResponse},
		{"unavailable", &fakeProviderErr{kind: "unavailable"}, ErrProviderUnavailable},
		{"plain", stderrors.New("dial tcp: refused"), ErrProviderUnavailable},
		{"already app error", New(ErrConfiguration), ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromProvider(tt.err).Code)
		})
	}
	assert.Nil(t, FromProvider(nil))
}

func TestExtractCode(t *testing.T) {
	assert.Equal(t, Success, ExtractCode(nil))
	assert.Equal(t, ErrInternal, ExtractCode(stderrors.New("x")))
	assert.True(t, IsProviderError(ErrMalformedResponse))
	assert.False(t, IsProviderError(ErrPatternInvalid))
	assert.Equal(t, "Invalid pattern: x", FormatError(ErrPatternInvalid, "x"))
}
