package api

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "finbase/pkg/domain-errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError translates coded domain errors into the JSON error envelope.
// Uncoded errors collapse to 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	writeJSON(w, httpStatus(code), map[string]string{
		"error":   string(code),
		"message": publicMessage(err, code),
	})
}

func httpStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeDomainValue:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConstraintViolation, dErrors.CodeInvalidState:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error, code dErrors.Code) string {
	if code == dErrors.CodeInternal {
		return "internal error"
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "request failed"
}
