package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pinauth/pkg/domain-errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteError_TokenCodesAreGeneric(t *testing.T) {
	for _, code := range []dErrors.Code{
		dErrors.CodeTokenExpired, dErrors.CodeInvalidSignature, dErrors.CodeTokenMalformed,
	} {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.New(code, "internal diagnostic detail"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "unauthorized", body["error"])
		// The internal distinction never reaches the caller.
		assert.Equal(t, "invalid credentials", body["error_description"])
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeUnauthorized, http.StatusUnauthorized},
		{dErrors.CodeValidation, http.StatusBadRequest},
		{dErrors.CodeUnknownReference, http.StatusBadRequest},
		{dErrors.CodeConflict, http.StatusConflict},
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeForbidden, http.StatusForbidden},
		{dErrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.New(tt.code, "msg"))
		assert.Equal(t, tt.status, rec.Code, "code %s", tt.code)
	}
}

func TestWriteError_InternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "db down"))

	body := decode(t, rec)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestWriteError_UnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
