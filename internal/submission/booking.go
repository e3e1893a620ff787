package submission

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dukerupert/swimschool/internal/form"
	"github.com/dukerupert/swimschool/internal/metrics"
	"github.com/dukerupert/swimschool/internal/model"
	"github.com/dukerupert/swimschool/internal/ratelimit"
	"github.com/dukerupert/swimschool/internal/session"
	"github.com/dukerupert/swimschool/internal/store"
)

type BookingConfig struct {
	Policy       ratelimit.Policy
	CoursePeriod string
	TimeSlots    []string
	// BaseURL is the public origin used to build confirmation links.
	BaseURL string
}

type BookingService struct {
	store    BookingRepository
	notifier BookingNotifier
	cfg      BookingConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewBookingService(store BookingRepository, notifier BookingNotifier, cfg BookingConfig, logger *slog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// TimeSlots returns the configured slots for rendering the form.
func (s *BookingService) TimeSlots() []string {
	return s.cfg.TimeSlots
}

func (s *BookingService) CoursePeriod() string {
	return s.cfg.CoursePeriod
}

// ConfirmURL builds the public confirmation link for token.
func (s *BookingService) ConfirmURL(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/booking/confirm/" + token
}

// Submit runs one booking submission through the pipeline.
func (s *BookingService) Submit(ctx context.Context, sess *session.Session, values url.Values, meta model.SubmissionMeta) BookingResult {
	res := s.submit(ctx, sess, values, meta)
	metrics.IncSubmission("booking", string(res.Outcome))
	return res
}

func (s *BookingService) submit(ctx context.Context, sess *session.Session, values url.Values, meta model.SubmissionMeta) BookingResult {
	now := s.now()
	f := form.BindBooking(values)

	window := ratelimit.Check(sess, BookingTimesKey, s.cfg.Policy, now)
	if window.Blocked {
		s.keepForm(sess, f)
		s.logger.Info("booking rate limited", "ip", meta.IP)
		return BookingResult{Outcome: RateLimited}
	}

	if form.IsSpam(values) {
		s.tick(sess, window.Times, now)
		s.logger.Info("booking honeypot triggered", "ip", meta.IP, "user_agent", meta.UserAgent)
		return BookingResult{Outcome: Spam}
	}

	if errs := f.Validate(s.cfg.TimeSlots); len(errs) > 0 {
		return BookingResult{Outcome: Invalid, Form: f, Errors: errs}
	}

	b, err := f.Booking(s.cfg.CoursePeriod)
	if err != nil {
		return BookingResult{Outcome: Invalid, Form: f, Errors: form.FieldErrors{{
			Field: "childBirthdate", Rule: "datetime", Message: "Please enter a valid date.",
		}}}
	}
	meta.Time = now.UTC()
	b.Meta = meta

	if err := s.persist(ctx, sess, b); err != nil {
		s.keepForm(sess, f)
		s.logger.Error("persist booking",
			"error", err,
			"ip", meta.IP,
			"user_agent", meta.UserAgent,
			"host", meta.Host,
		)
		return BookingResult{Outcome: StorageFailed}
	}

	if err := s.notifier.SendBookingConfirmationRequest(ctx, b, s.ConfirmURL(b.ConfirmationToken)); err != nil {
		metrics.IncEmail("booking_confirm_request", "failed")
		if serr := sess.Set(bookingPendingKey, b.ID); serr != nil {
			s.logger.Error("remember pending booking", "error", serr)
		}
		s.keepForm(sess, f)
		s.logger.Error("send booking confirmation request",
			"error", err,
			"booking_id", b.ID,
			"token", tokenPrefix(b.ConfirmationToken),
		)
		return BookingResult{Outcome: TransportFailed}
	}
	metrics.IncEmail("booking_confirm_request", "sent")

	s.tick(sess, window.Times, now)
	if err := sess.Set(BookingSummaryKey, form.NewBookingSnapshot(b)); err != nil {
		s.logger.Error("store booking summary", "error", err)
	}
	sess.Remove(bookingPendingKey)
	sess.Remove(BookingFormKey)

	s.logger.Info("booking submitted", "booking_id", b.ID, "time_slot", b.DesiredTimeSlot)
	return BookingResult{Outcome: Accepted, Booking: b}
}

// persist inserts b, or rewrites the pending record left behind by an
// earlier attempt from this session whose mail failed. The pending record
// keeps its token so a link that did get delivered stays valid.
func (s *BookingService) persist(ctx context.Context, sess *session.Session, b *model.Booking) error {
	var pendingID int64
	if ok, _ := sess.Get(bookingPendingKey, &pendingID); ok && pendingID > 0 {
		existing, err := s.store.GetByID(ctx, pendingID)
		if err != nil {
			return err
		}
		if existing != nil && !existing.IsConfirmed() {
			b.ID = existing.ID
			b.ConfirmationToken = existing.ConfirmationToken
			b.CreatedAt = existing.CreatedAt
			err := s.store.Update(ctx, b)
			if err == nil {
				return nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		sess.Remove(bookingPendingKey)
		b.ID = 0
		b.ConfirmationToken = ""
		b.CreatedAt = time.Time{}
	}
	return s.store.Create(ctx, b)
}

func (s *BookingService) keepForm(sess *session.Session, f form.BookingForm) {
	if err := sess.Set(BookingFormKey, f); err != nil {
		s.logger.Error("store booking form snapshot", "error", err)
	}
}

func (s *BookingService) tick(sess *session.Session, times []time.Time, now time.Time) {
	if err := ratelimit.Tick(sess, BookingTimesKey, times, now); err != nil {
		s.logger.Error("booking rate limit tick", "error", err)
	}
}

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// Confirm resolves a confirmation link. The first visit moves the booking
// from pending to confirmed and notifies the school; later visits report
// ConfirmAlready without side effects. A failed owner notification is logged
// and does not undo the confirmation.
func (s *BookingService) Confirm(ctx context.Context, token string) (model.ConfirmStatus, error) {
	status, err := s.confirm(ctx, token)
	if err == nil {
		metrics.IncConfirmation(string(status))
	}
	return status, err
}

func (s *BookingService) confirm(ctx context.Context, token string) (model.ConfirmStatus, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if !tokenPattern.MatchString(token) {
		return model.ConfirmNotFound, nil
	}

	b, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if b == nil {
		return model.ConfirmNotFound, nil
	}
	if b.IsConfirmed() {
		return model.ConfirmAlready, nil
	}

	now := s.now().UTC()
	transitioned, err := s.store.MarkConfirmed(ctx, b.ID, now)
	if err != nil {
		return "", err
	}
	if !transitioned {
		return model.ConfirmAlready, nil
	}
	b.ConfirmedAt = &now

	if err := s.notifier.SendBookingOwnerNotification(ctx, b); err != nil {
		metrics.IncEmail("booking_owner", "failed")
		s.logger.Error("send booking owner notification",
			"error", err,
			"booking_id", b.ID,
			"token", tokenPrefix(token),
		)
	} else {
		metrics.IncEmail("booking_owner", "sent")
	}

	s.logger.Info("booking confirmed", "booking_id", b.ID)
	return model.ConfirmOK, nil
}
