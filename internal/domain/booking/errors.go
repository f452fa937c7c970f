package booking

import "errors"

var (
	ErrBadRequest        = errors.New("bad request")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNoPriestAvailable = errors.New("no priest available")
	ErrSlotTaken         = errors.New("slot already booked")
	ErrInvalidTransition = errors.New("invalid status transition")
)

func IsErrNoPriestAvailable(err error) bool {
	return errors.Is(err, ErrNoPriestAvailable)
}

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsErrInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func IsErrSlotTaken(err error) bool {
	return errors.Is(err, ErrSlotTaken)
}

func IsErrForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsErrBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}
