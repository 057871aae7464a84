package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "pinauth/pkg/domain-errors"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses. No
// internal detail (stack traces, hash material, signing keys) crosses the
// boundary: unknown errors collapse to a bare internal_error envelope.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		response := map[string]string{
			"error": errorCode(domainErr.Code),
		}
		if msg := publicMessage(domainErr); msg != "" {
			response["error_description"] = msg
		}
		WriteJSON(w, status, response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeUnknownReference:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeUnauthorized,
		dErrors.CodeTokenExpired, dErrors.CodeInvalidSignature, dErrors.CodeTokenMalformed:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// errorCode normalizes the token diagnostics codes to the generic unauthorized
// code so callers cannot probe verification internals.
func errorCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeTokenExpired, dErrors.CodeInvalidSignature, dErrors.CodeTokenMalformed:
		return string(dErrors.CodeUnauthorized)
	case dErrors.CodeInternal:
		return string(dErrors.CodeInternal)
	default:
		return string(code)
	}
}

// publicMessage suppresses messages for codes whose detail must stay internal.
func publicMessage(err *dErrors.Error) string {
	switch err.Code {
	case dErrors.CodeTokenExpired, dErrors.CodeInvalidSignature, dErrors.CodeTokenMalformed:
		return "invalid credentials"
	case dErrors.CodeInternal:
		return ""
	default:
		return err.Message
	}
}
