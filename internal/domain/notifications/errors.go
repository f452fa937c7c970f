package notifications

import "errors"

var (
	ErrBadRequest = errors.New("invalid notification request")
	ErrNotFound   = errors.New("notification not found")
	ErrForbidden  = errors.New("not allowed")
)

func IsErrNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
