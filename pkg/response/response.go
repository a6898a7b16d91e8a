package response

import (
	"errors"
)

// Error pairs a domain sentinel with the HTTP status it maps to, so the
// handler layer can translate service errors without a lookup table.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Is matches on status code and message so sentinels survive wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}
