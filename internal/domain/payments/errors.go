package payments

import "errors"

var (
	ErrBadRequest    = errors.New("invalid payment request")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("not allowed")
	ErrNotPayable    = errors.New("booking cannot be paid")
	ErrNotRefundable = errors.New("booking cannot be refunded")
	ErrNotConfigured = errors.New("stripe is not configured")
)

func IsErrNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsErrNotPayable(err error) bool    { return errors.Is(err, ErrNotPayable) }
func IsErrNotRefundable(err error) bool { return errors.Is(err, ErrNotRefundable) }
