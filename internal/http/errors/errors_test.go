package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrMissingFields.WithMissingFields([]string{"bio"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_FIELDS", body["code"])
	assert.Equal(t, []any{"bio"}, body["missingFields"])
}

func TestWriteError_UnknownIs500WithoutCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, stderrors.New("pg: connection refused on 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestWithDetail_DoesNotMutateBase(t *testing.T) {
	e := ErrInvalidJSON.WithDetail("x")
	assert.Equal(t, "x", e.Detail)
	assert.Empty(t, ErrInvalidJSON.Detail)
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	e := ErrInternalServerError.WithCause(cause)
	assert.ErrorIs(t, e, cause)
}
