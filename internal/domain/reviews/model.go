package reviews

import (
	"fmt"
	"strings"
	"time"

	"priestbook/backend/internal/utils"
)

const maxCommentLen = 2000

type CreateInput struct {
	BookingID string `json:"bookingId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type UpdateInput struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

type ListInput struct {
	Limit  int
	Cursor time.Time
}

func (in *CreateInput) Validate() error {
	in.BookingID = strings.TrimSpace(in.BookingID)
	if in.BookingID == "" {
		return fmt.Errorf("%w: bookingId is required", ErrBadRequest)
	}
	if err := validRating(in.Rating); err != nil {
		return err
	}
	in.Comment = utils.TrimMax(in.Comment, maxCommentLen)
	return nil
}

func (in *UpdateInput) Validate() error {
	if in.Rating == nil && in.Comment == nil {
		return fmt.Errorf("%w: nothing to update", ErrBadRequest)
	}
	if in.Rating != nil {
		if err := validRating(*in.Rating); err != nil {
			return err
		}
	}
	if in.Comment != nil {
		*in.Comment = utils.TrimMax(*in.Comment, maxCommentLen)
	}
	return nil
}

func validRating(r int) error {
	if r < 1 || r > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrBadRequest)
	}
	return nil
}

// Mean returns the arithmetic mean of the ratings, or 0 when there are
// none.
func Mean(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
