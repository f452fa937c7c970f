package payments

import (
	"context"
	"fmt"
	"math"
	"strings"

	"priestbook/backend/internal/config"
	"priestbook/backend/internal/models"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/refund"
)

const currency = string(stripe.CurrencyUSD)

// Bookings is the slice of the booking store the payment flow needs.
type Bookings interface {
	Get(ctx context.Context, id string) (*models.Booking, error)
	SetPayment(ctx context.Context, id string, status models.PaymentStatus, intentID string) error
}

type Service struct {
	cfg      config.Config
	bookings Bookings
}

func NewService(cfg config.Config, bookings Bookings) *Service {
	stripe.Key = cfg.StripeSecretKey
	return &Service{cfg: cfg, bookings: bookings}
}

type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateCheckout opens a Stripe Checkout session for one booking. Only
// the booking's client may pay, and only while the payment is still
// pending or after a failed attempt.
func (s *Service) CreateCheckout(ctx context.Context, userID, bookingID string) (*CheckoutSession, error) {
	if s.cfg.StripeSecretKey == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(bookingID) == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrBadRequest)
	}

	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}
	if b.UserID != userID {
		return nil, fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}
	if b.Status == models.BookingCancelled {
		return nil, fmt.Errorf("%w: booking is cancelled", ErrNotPayable)
	}
	switch b.PaymentStatus {
	case models.PaymentPending, models.PaymentFailed:
	default:
		return nil, fmt.Errorf("%w: payment is %s", ErrNotPayable, b.PaymentStatus)
	}
	if b.TotalAmount <= 0 {
		return nil, fmt.Errorf("%w: nothing to charge", ErrNotPayable)
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:  stripe.String(s.cfg.CheckoutCancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(toCents(b.TotalAmount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(b.ServiceName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{"bookingId": b.ID},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"bookingId": b.ID},
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if err := s.bookings.SetPayment(ctx, b.ID, models.PaymentProcessing, ""); err != nil {
		return nil, err
	}

	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// Refund returns a completed payment for a cancelled booking. Either
// party to the booking may trigger it.
func (s *Service) Refund(ctx context.Context, callerUID, bookingID string) error {
	if s.cfg.StripeSecretKey == "" {
		return ErrNotConfigured
	}

	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}
	if callerUID != b.UserID && callerUID != b.PriestID {
		return fmt.Errorf("%w: not a party to this booking", ErrForbidden)
	}
	if b.Status != models.BookingCancelled {
		return fmt.Errorf("%w: booking is %s, not cancelled", ErrNotRefundable, b.Status)
	}
	if b.PaymentStatus != models.PaymentCompleted {
		return fmt.Errorf("%w: payment is %s", ErrNotRefundable, b.PaymentStatus)
	}
	if b.PaymentIntentID == "" {
		return fmt.Errorf("%w: no payment on record", ErrNotRefundable)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(b.PaymentIntentID),
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("refund failed: %w", err)
	}

	return s.bookings.SetPayment(ctx, b.ID, models.PaymentRefunded, "")
}

// toCents converts a dollar amount to Stripe's integer minor units.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
