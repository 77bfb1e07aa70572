package arango

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by *Error.
const (
	ErrCodeDocumentNotFound     = "DOCUMENT_NOT_FOUND"
	ErrCodeCollectionNotFound   = "COLLECTION_NOT_FOUND"
	ErrCodeBadSyntax            = "BAD_SYNTAX"
	ErrCodeNoCollectionProvided = "NO_COLLECTION_PROVIDED"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeClient               = "CLIENT_ERROR"
	ErrCodeServer               = "SERVER_ERROR"
)

// Server error numbers with a dedicated error code.
const (
	ErrorNumDocumentNotFound   = 1202
	ErrorNumCollectionNotFound = 1203
	ErrorNumQueryParse         = 1501
)

// ErrNoCollectionProvided is returned when a collection-scoped query runs on a
// database-scoped Query.
var ErrNoCollectionProvided = &Error{
	Code:       ErrCodeNoCollectionProvided,
	Message:    "no collection provided",
	HTTPStatus: http.StatusBadRequest,
}

// Error is the error type returned by every operation of this package.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	ErrorNum   int    `json:"errorNum,omitempty"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code, so errors.Is works with
// ErrNoCollectionProvided and similar sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewDocumentNotFoundError creates a document not found error.
func NewDocumentNotFoundError(handle string) *Error {
	return &Error{
		Code:       ErrCodeDocumentNotFound,
		Message:    "document not found",
		Details:    handle,
		HTTPStatus: http.StatusNotFound,
		ErrorNum:   ErrorNumDocumentNotFound,
	}
}

// NewCollectionNotFoundError creates a collection not found error.
func NewCollectionNotFoundError(identifier string) *Error {
	return &Error{
		Code:       ErrCodeCollectionNotFound,
		Message:    "collection not found",
		Details:    identifier,
		HTTPStatus: http.StatusNotFound,
		ErrorNum:   ErrorNumCollectionNotFound,
	}
}

// NewBadSyntaxError creates a query syntax error.
func NewBadSyntaxError(message string) *Error {
	return &Error{
		Code:       ErrCodeBadSyntax,
		Message:    "bad syntax",
		Details:    message,
		HTTPStatus: http.StatusBadRequest,
		ErrorNum:   ErrorNumQueryParse,
	}
}

// NewValidationError creates an error for arguments rejected before any I/O.
func NewValidationError(message string, details string) *Error {
	return &Error{
		Code:       ErrCodeValidation,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewResponseError creates the generic client or server error for a non-2xx
// response that has no dedicated code.
func NewResponseError(status, errorNum int, message string) *Error {
	code := ErrCodeClient
	if status >= http.StatusInternalServerError {
		code = ErrCodeServer
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{
		Code:       code,
		Message:    message,
		Details:    fmt.Sprintf("status %d", status),
		HTTPStatus: status,
		ErrorNum:   errorNum,
	}
}

// GetError extracts an *Error from err.
func GetError(err error) (*Error, bool) {
	var arangoErr *Error
	if errors.As(err, &arangoErr) {
		return arangoErr, true
	}
	return nil, false
}

func hasCode(err error, code string) bool {
	arangoErr, ok := GetError(err)
	return ok && arangoErr.Code == code
}

// IsDocumentNotFound checks if the error is a document not found error.
func IsDocumentNotFound(err error) bool {
	return hasCode(err, ErrCodeDocumentNotFound)
}

// IsCollectionNotFound checks if the error is a collection not found error.
func IsCollectionNotFound(err error) bool {
	return hasCode(err, ErrCodeCollectionNotFound)
}

// IsBadSyntax checks if the error is a query syntax error.
func IsBadSyntax(err error) bool {
	return hasCode(err, ErrCodeBadSyntax)
}

// IsNoCollectionProvided checks if the error is a missing collection error.
func IsNoCollectionProvided(err error) bool {
	return hasCode(err, ErrCodeNoCollectionProvided)
}

// IsValidationError checks if the error is a local validation error.
func IsValidationError(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsClientError checks if the error is a generic 4xx error.
func IsClientError(err error) bool {
	return hasCode(err, ErrCodeClient)
}

// IsServerError checks if the error is a generic 5xx error.
func IsServerError(err error) bool {
	return hasCode(err, ErrCodeServer)
}
