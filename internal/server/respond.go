package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/logging"
	"github.com/abelbrown/peopledesk/internal/store"
)

// ErrInvalidTransition is returned when an action does not apply to the
// record's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// Error is a failure with a message meant for the person at the terminal.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(msg string) error { return &Error{Status: http.StatusBadRequest, Message: msg} }

type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps domain errors to a status and a {message} body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		apiErr *Error
		valErr *hr.ValidationError
	)
	switch {
	case errors.As(err, &apiErr):
		writeMessage(w, apiErr.Status, apiErr.Message)
	case errors.As(err, &valErr) && len(valErr.Issues) > 0:
		is := valErr.Issues[0]
		writeMessage(w, http.StatusBadRequest, is.Path+" "+is.Message)
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	default:
		logging.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
