package reviews

import "errors"

var (
	ErrBadRequest      = errors.New("invalid review request")
	ErrNotFound        = errors.New("review not found")
	ErrForbidden       = errors.New("not allowed")
	ErrDuplicateReview = errors.New("booking already reviewed")
	ErrNotReviewable   = errors.New("booking is not reviewable")
)

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsErrDuplicateReview(err error) bool {
	return errors.Is(err, ErrDuplicateReview)
}
