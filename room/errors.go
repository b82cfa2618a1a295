package room

import (
	"fmt"
	"strings"
)

type Code int

const (
	ErrorCodeInvalidArguments Code = 3
	ErrorCodeNotFound         Code = 5
	ErrorCodeAlreadyExists    Code = 6
	ErrorCodeInternal         Code = 13
	ErrorCodeUnauthenticated  Code = 16
)

// Error is returned by every `Service` operation.
type Error struct {
	Code   Code     `json:"code"`
	Params []string `json:"params,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("room error %d: %s", e.Code, strings.Join(e.Params, "; "))
}

// CodeOf returns the code of a room error, ErrorCodeInternal for any other error.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrorCodeInternal
}

func newInvalidArgumentError(errs ...string) *Error {
	return &Error{Code: ErrorCodeInvalidArguments, Params: errs}
}

func newInternalError(err error) *Error {
	return &Error{Code: ErrorCodeInternal, Params: []string{err.Error()}}
}

// InterceptError hides storage details before an error reaches a client.
func InterceptError(err *Error) {
	if err.Code == ErrorCodeInternal {
		err.Params = []string{"temp storage error"}
	}
}
