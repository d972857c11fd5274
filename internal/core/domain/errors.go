package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("Invalid username or password.")
	ErrForbidden          = errors.New("Admin access required.")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrUserNotFound       = errors.New("user not found")
	ErrCustomerNotFound   = errors.New("Customer not found!")
	ErrLeadNotFound       = errors.New("Lead not found!")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrSessionNotFound    = errors.New("session not found")
)

// ValidationError is a user-facing input error. It matches ErrValidation
// with errors.Is and carries the message shown to the caller. Field is set
// when a single field is at fault.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError returns a *ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// NewFieldError returns a *ValidationError bound to a single field.
func NewFieldError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// DuplicateKeyError reports which unique field collided. It matches
// ErrDuplicateKey with errors.Is.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return ErrDuplicateKey.Error()
	}
	return "duplicate " + e.Field
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }
