package apperror

import (
	"errors"
	"fmt"
)

// Machine-readable error codes shared across services and controllers.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeDuplicateEntry          = "DUPLICATE_ENTRY"
	CodeInvalidPayload          = "INVALID_PAYLOAD"
	CodeInvalidProducts         = "INVALID_PRODUCTS"
	CodeInvalidProduct          = "INVALID_PRODUCT"
	CodeInvalidPublisher        = "INVALID_PUBLISHER"
	CodeInvalidPublisherProduct = "INVALID_PUBLISHER_PRODUCT"
	CodeInvalidProposal         = "INVALID_PROPOSAL"
	CodeInvalidClient           = "INVALID_CLIENT"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeEditBlocked             = "EDIT_BLOCKED"
	CodeNoCredits               = "NO_CREDITS"
	CodeAlreadyPaid             = "ALREADY_PAID"
)

// Error carries a machine code next to the human message so controllers can map
// it to an HTTP status without string matching.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the machine code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return CodeOf(err) == code
}
