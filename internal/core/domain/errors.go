package domain

import "errors"

// ErrorKind classifies business failures so the HTTP layer can pick a status.
type ErrorKind string

const (
	KindNotFound  ErrorKind = "not_found"
	KindForbidden ErrorKind = "forbidden"
	KindConflict  ErrorKind = "conflict"
	KindInvalid   ErrorKind = "invalid"
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error  { return NewError(KindNotFound, message) }
func Forbidden(message string) *Error { return NewError(KindForbidden, message) }
func Conflict(message string) *Error  { return NewError(KindConflict, message) }
func Invalid(message string) *Error   { return NewError(KindInvalid, message) }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
