// Package submission runs the booking and contact form pipelines: rate
// limit, honeypot, validation, persistence, mail and confirmation.
package submission

import (
	"context"
	"time"

	"github.com/dukerupert/swimschool/internal/form"
	"github.com/dukerupert/swimschool/internal/model"
)

// Outcome tags the result of one submission. The HTTP layer maps it to a
// redirect or a re-rendered form.
type Outcome string

const (
	Accepted        Outcome = "accepted"
	Spam            Outcome = "spam"
	Invalid         Outcome = "invalid"
	RateLimited     Outcome = "rate_limited"
	TransportFailed Outcome = "transport_failed"
	StorageFailed   Outcome = "storage_failed"
)

// Succeeded reports whether the submitter should see the success banner.
// Spam is deliberately indistinguishable from Accepted.
func (o Outcome) Succeeded() bool {
	return o == Accepted || o == Spam
}

// BookingResult carries the outcome of a booking submission. Form and
// Errors are set for Invalid; Booking is set for Accepted.
type BookingResult struct {
	Outcome Outcome
	Form    form.BookingForm
	Errors  form.FieldErrors
	Booking *model.Booking
}

type ContactResult struct {
	Outcome Outcome
	Form    form.ContactForm
	Errors  form.FieldErrors
	Contact *model.Contact
}

type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	Update(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetByToken(ctx context.Context, token string) (*model.Booking, error)
	MarkConfirmed(ctx context.Context, id int64, at time.Time) (bool, error)
}

type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) error
	Update(ctx context.Context, c *model.Contact) error
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
}

type BookingNotifier interface {
	SendBookingConfirmationRequest(ctx context.Context, b *model.Booking, confirmURL string) error
	SendBookingOwnerNotification(ctx context.Context, b *model.Booking) error
}

type ContactNotifier interface {
	SendContactNotification(ctx context.Context, c *model.Contact) error
}

// Session keys. Each form owns its own namespace.
const (
	BookingTimesKey   = "booking.times"
	BookingFormKey    = "booking.form"
	BookingSummaryKey = "booking.summary"
	bookingPendingKey = "booking.pending"

	ContactTimesKey   = "contact.times"
	ContactFormKey    = "contact.form"
	contactPendingKey = "contact.pending"
)

func tokenPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
