package profile

import "errors"

var (
	ErrValidation           = errors.New("invalid input")
	ErrAuth                 = errors.New("identity provider rejected")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrCannotDeactivateSelf = errors.New("cannot deactivate yourself")
)

func IsErrValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsErrForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsErrAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}
