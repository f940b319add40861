package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/limaJavier/coursetabling/pkg/model"
)

// Error is the error body of every failed request. Details carries the solver stats of an unsuccessful
// solve, or the list of problems of a rejected instance.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithMessage returns a copy of the error with the message replaced
func (e *Error) WithMessage(message string) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Message = message
	return &clone
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap keeps the code and status of the template and records err as the cause
func Wrap(err error, template *Error, message string) *Error {
	if message == "" {
		message = template.Message
	}
	return &Error{Code: template.Code, Status: template.Status, Message: message, Err: err}
}

var (
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInfeasible       = New("INFEASIBLE", http.StatusUnprocessableEntity, "no timetable satisfies the hard constraints")
	ErrDeadlineExceeded = New("DEADLINE_EXCEEDED", http.StatusServiceUnavailable, "the solver stopped before completing the search")
	ErrUnverified       = New("TIMETABLE_UNVERIFIED", http.StatusInternalServerError, "timetable failed verification")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromValidation rejects an instance, listing every problem found in it when err is a *model.ValidationError
func FromValidation(err error) *Error {
	appErr := Wrap(err, ErrValidation, "invalid model input")
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		appErr.Details = validationErr.Problems
	}
	return appErr
}

// FromResult is nil for a solved result. Otherwise the error carries the stats of the unsuccessful solve
func FromResult(result model.Result) *Error {
	var template *Error
	switch result.Status {
	case model.StatusSolved:
		return nil
	case model.StatusInfeasible:
		template = ErrInfeasible
	default:
		template = ErrDeadlineExceeded
	}
	appErr := Wrap(result.Err(), template, "")
	appErr.Details = result.Stats
	return appErr
}

// FromError normalises any error into an *Error. Engine sentinels keep their meaning, anything else is internal
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &validationErr):
		return FromValidation(err)
	case errors.Is(err, model.ErrInfeasible):
		return Wrap(err, ErrInfeasible, "")
	case errors.Is(err, model.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrDeadlineExceeded, "")
	}
	return Wrap(err, ErrInternal, "")
}
