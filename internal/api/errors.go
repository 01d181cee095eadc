package api

import (
	"errors"
	"net/http"

	"github.com/heimdex/prproj-export/internal/project"
)

// projectErrorStatus maps a conversion error to an HTTP status and code.
func projectErrorStatus(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"
	case errors.Is(err, project.ErrMalformed):
		return http.StatusBadRequest, "MALFORMED_PROJECT"
	case errors.Is(err, project.ErrUnsupportedSchema):
		return http.StatusUnprocessableEntity, "UNSUPPORTED_SCHEMA"
	case errors.Is(err, project.ErrCyclicReference):
		return http.StatusUnprocessableEntity, "CYCLIC_SEQUENCE"
	case errors.Is(err, project.ErrDanglingReference):
		return http.StatusUnprocessableEntity, "DANGLING_REFERENCE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func writeProjectError(w http.ResponseWriter, err error) {
	status, code := projectErrorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "conversion failed"
	}
	WriteError(w, status, msg, code)
}
