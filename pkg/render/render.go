// Package render writes JSON responses and renders API errors as
// {"detail": "..."} bodies with the error's status code.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ContentTypeJSON is the media type of every body rendered here.
const ContentTypeJSON = "application/json"

// ServerErrorDetail is the detail rendered for errors that carry no status.
const ServerErrorDetail = "A server error occurred."

// Error is an API error with a wire status and a human readable detail.
type Error struct {
	Status int
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api error (status %d): %s: %v", e.Status, e.Detail, e.Err)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// PreconditionRequired builds a 428 error.
func PreconditionRequired(detail string) *Error {
	return &Error{Status: http.StatusPreconditionRequired, Detail: detail}
}

// PreconditionFailed builds a 412 error.
func PreconditionFailed(detail string) *Error {
	return &Error{Status: http.StatusPreconditionFailed, Detail: detail}
}

// BadRequest builds a 400 error.
func BadRequest(detail string) *Error {
	return &Error{Status: http.StatusBadRequest, Detail: detail}
}

// NotFound builds a 404 error.
func NotFound() *Error {
	return &Error{Status: http.StatusNotFound, Detail: "Not found."}
}

// JSON encodes v and writes it with the given status. Content-Length is
// always set so replayed responses report the same length.
func JSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// WriteError renders err. An *Error anywhere in the chain decides the
// status; any other error becomes a 500.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = &Error{Status: http.StatusInternalServerError, Detail: ServerErrorDetail, Err: err}
	}
	_ = JSON(w, apiErr.Status, map[string]string{"detail": apiErr.Detail})
}
