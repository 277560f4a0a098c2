package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	// Details is rendered alongside the message when set. Conflicts use it to
	// enumerate the rows that blocked an operation.
	Details interface{}
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	te.Details = err.Details
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// BadRequest returns a 400 error for requests that are well formed but can't
// be acted upon.
func BadRequest(msg string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  msg,
		Code:     "bad_request",
	}
}

// Unauthorized returns a 401 error. It is used both for missing or invalid
// tokens and for rejected credentials.
func Unauthorized(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnauthorized,
		Message:  msg,
		Code:     "unauthorized",
	}
}

// Forbidden returns a 403 error with a message indicating the action is
// forbidden.
func Forbidden(action string) error {
	return &Error{
		HTTPCode: http.StatusForbidden,
		Message:  action + " is not allowed.",
		Code:     "forbidden",
	}
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " not found.",
		Code:     "not_found",
	}
}

// Conflict returns a 409 error for uniqueness violations and blocked deletes.
func Conflict(msg string) error {
	return &Error{
		HTTPCode: http.StatusConflict,
		Message:  msg,
		Code:     "conflict",
	}
}

// ConflictWithDetails is Conflict with a structured description of what caused
// it.
func ConflictWithDetails(msg string, details interface{}) error {
	return &Error{
		HTTPCode: http.StatusConflict,
		Message:  msg,
		Code:     "conflict",
		Details:  details,
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  fmt.Sprintf("Unknown Parameter %q", param),
		Code:     "unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  msg,
		Code:     "validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  msg,
		Code:     "validation_error",
	}
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Request body can't be empty.",
		Code:     "empty_request_body",
	}
}
