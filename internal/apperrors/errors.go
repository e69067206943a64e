package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeInternal     ErrorType = "INTERNAL"
	ErrTypeUnavailable  ErrorType = "UNAVAILABLE"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Unauthorized(message string, err error) *DomainError {
	return New(ErrTypeUnauthorized, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

// Is reports whether err carries a DomainError of the given type.
func Is(err error, errType ErrorType) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == errType
}

// HTTPStatus maps an error to the status code handlers answer with.
func HTTPStatus(err error) int {
	var de *DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Type {
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeInvalidInput:
		return http.StatusBadRequest
	case ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text of err. Internal errors are not
// described beyond their message so wrapped causes stay in the logs.
func Message(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
