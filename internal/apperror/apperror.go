// Package apperror carries an HTTP status alongside an error so the error
// normalizer can respond with something other than 500.
package apperror

import "net/http"

type Error struct {
	Status int
	Err    error
}

func New(status int, err error) *Error {
	return &Error{Status: status, Err: err}
}

func BadRequest(err error) *Error {
	return New(http.StatusBadRequest, err)
}

func (e *Error) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Status
}
