package service

import (
	"errors"
	"fmt"

	"github.com/Baaaki/yamdb/internal/models"
	"gorm.io/gorm"
)

// Error kinds. Handlers map each kind onto an HTTP status; match with errors.Is.
var (
	ErrValidation              = errors.New("validation error")
	ErrConflict                = errors.New("conflict")
	ErrNotFound                = errors.New("not found")
	ErrPermission              = errors.New("permission denied")
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
)

// Error carries a client-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func conflictError(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

func notFoundError(what string) error {
	return newError(ErrNotFound, "%s not found", what)
}

// authorize turns an access decision into an error: anonymous callers get
// ErrUnauthenticated, authenticated ones ErrPermission.
func authorize(actor *models.User, allowed bool) error {
	if actor == nil {
		return newError(ErrUnauthenticated, "authentication required")
	}
	if !allowed {
		return newError(ErrPermission, "you do not have permission to perform this action")
	}
	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
