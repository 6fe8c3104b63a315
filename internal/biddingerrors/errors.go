package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrCategoryExists       = errors.New("category already exists")
	ErrNoBids               = errors.New("no bids found for listing")
)

// business logic errors
var (
	ErrInvalidBid   = errors.New("invalid bid")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
)

// ErrInvalidCredentials covers both an unknown username and a wrong password
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError is a user-correctable rejection. Message is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Bid rule violations
var (
	ErrBidNotHigher     = &ValidationError{Message: "Your bid must be higher than the current one."}
	ErrBidBelowStarting = &ValidationError{Message: "Your bid must not be lower than the starting one."}
)

// NewValidationError builds a ValidationError for input checks outside the bid rule.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}
