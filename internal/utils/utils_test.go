package utils

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatusCode(t *testing.T) {
	cases := map[string]int{
		"InvalidCredentials": http.StatusUnauthorized,
		"SessionExpired":     http.StatusUnauthorized,
		"AccountInactive":    http.StatusForbidden,
		"Forbidden":          http.StatusForbidden,
		"DuplicateUnitKey":   http.StatusConflict,
		"UnitNotAvailable":   http.StatusConflict,
		"LeaseNotActive":     http.StatusConflict,
		"NotFound":           http.StatusNotFound,
		"Validation":         http.StatusBadRequest,
		"Unavailable":        http.StatusServiceUnavailable,
		"Internal":           http.StatusInternalServerError,
		"SomethingElse":      http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, GetHTTPStatusCode(CodeForKind(kind)), kind)
	}
}

func TestParsers(t *testing.T) {
	assert.Equal(t, 5, ParseInt("5", 1))
	assert.Equal(t, 1, ParseInt("x", 1))
	assert.Equal(t, 1, ParseInt("", 1))

	id := uuid.New()
	parsed, err := ParseOptionalUUID(" " + id.String())
	require.NoError(t, err)
	assert.Equal(t, id, *parsed)

	parsed, err = ParseOptionalUUID("")
	require.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = ParseOptionalUUID("nope")
	assert.Error(t, err)

	b, err := ParseOptionalBool("true")
	require.NoError(t, err)
	assert.True(t, *b)

	b, err = ParseOptionalBool("")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = ParseOptionalBool("maybe")
	assert.Error(t, err)
}

func TestKindForCode(t *testing.T) {
	assert.Equal(t, "NotFound", KindForCode(ErrCodeNotFound))
	assert.Equal(t, "Internal", KindForCode(ErrCodeInternalError))
	assert.Equal(t, "", KindForCode(ErrCodeInvalidInput))
}
