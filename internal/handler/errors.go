package handler

import (
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	codeNotFound             = "not_found"
	codeMethodNotAllowed     = "method_not_allowed"
	codeInvalidRequestBody   = "invalid_request_body"
	codeMissingRequiredField = "missing_required_field"
	codeInvalidID            = "invalid_id"
	codeValidationFailed     = "validation_failed"
	codeEventNotFound        = "event_not_found"
	codeUserNotFound         = "user_not_found"
	codeRegistrationNotFound = "registration_not_found"
	codeEventExpired         = "event_expired"
	codeEventFull            = "event_full"
	codeAlreadyRegistered    = "already_registered"
	codeEmailTaken           = "email_taken"
	codeInvalidState         = "invalid_state"
	codeConflict             = "conflict"
	codeInternalError        = "internal_error"

	internalErrorMessage = "internal error"
)

// specificCodes names the precise reasons clients may branch on. Errors not
// listed fall back to the code of their kind.
var specificCodes = []struct {
	err  error
	code string
}{
	{model.ErrEventNotFound, codeEventNotFound},
	{model.ErrUserNotFound, codeUserNotFound},
	{model.ErrRegistrationNotFound, codeRegistrationNotFound},
	{model.ErrEventExpired, codeEventExpired},
	{model.ErrEventFull, codeEventFull},
	{model.ErrAlreadyRegistered, codeAlreadyRegistered},
	{model.ErrEmailTaken, codeEmailTaken},
	{model.ErrInvalidID, codeInvalidID},
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

// statusFor maps an error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	kind := model.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case model.KindNotFound:
		status = http.StatusNotFound
	case model.KindInvalidState, model.KindInvalidInput:
		status = http.StatusBadRequest
	case model.KindConflict:
		status = http.StatusConflict
	}

	for _, sc := range specificCodes {
		if errors.Is(err, sc.err) {
			return status, sc.code
		}
	}
	switch kind {
	case model.KindNotFound:
		return status, codeNotFound
	case model.KindInvalidState:
		return status, codeInvalidState
	case model.KindConflict:
		return status, codeConflict
	case model.KindInvalidInput:
		return status, codeValidationFailed
	default:
		return status, codeInternalError
	}
}

// writeServiceError renders a service failure. Internal failures are logged
// and their detail kept out of the response.
func (h *EventHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, status, code, internalErrorMessage)
		return
	}
	writeError(w, status, code, err.Error())
}
