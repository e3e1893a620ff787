package submission

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/dukerupert/swimschool/internal/form"
	"github.com/dukerupert/swimschool/internal/metrics"
	"github.com/dukerupert/swimschool/internal/model"
	"github.com/dukerupert/swimschool/internal/ratelimit"
	"github.com/dukerupert/swimschool/internal/session"
	"github.com/dukerupert/swimschool/internal/store"
)

type ContactService struct {
	store    ContactRepository
	notifier ContactNotifier
	policy   ratelimit.Policy
	logger   *slog.Logger
	now      func() time.Time
}

func NewContactService(store ContactRepository, notifier ContactNotifier, policy ratelimit.Policy, logger *slog.Logger) *ContactService {
	return &ContactService{
		store:    store,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit runs one contact submission through the pipeline. The request is
// stored before mailing so nothing is lost when the mail transport fails.
func (s *ContactService) Submit(ctx context.Context, sess *session.Session, values url.Values, meta model.SubmissionMeta) ContactResult {
	res := s.submit(ctx, sess, values, meta)
	metrics.IncSubmission("contact", string(res.Outcome))
	return res
}

func (s *ContactService) submit(ctx context.Context, sess *session.Session, values url.Values, meta model.SubmissionMeta) ContactResult {
	now := s.now()
	f := form.BindContact(values)

	window := ratelimit.Check(sess, ContactTimesKey, s.policy, now)
	if window.Blocked {
		s.keepForm(sess, f)
		s.logger.Info("contact rate limited", "ip", meta.IP)
		return ContactResult{Outcome: RateLimited}
	}

	if form.IsSpam(values) {
		s.tick(sess, window.Times, now)
		s.logger.Info("contact honeypot triggered", "ip", meta.IP, "user_agent", meta.UserAgent)
		return ContactResult{Outcome: Spam}
	}

	if errs := f.Validate(); len(errs) > 0 {
		return ContactResult{Outcome: Invalid, Form: f, Errors: errs}
	}

	c := f.Contact()
	meta.Time = now.UTC()
	c.Meta = meta

	if err := s.persist(ctx, sess, c); err != nil {
		s.keepForm(sess, f)
		s.logger.Error("persist contact request",
			"error", err,
			"ip", meta.IP,
			"user_agent", meta.UserAgent,
			"host", meta.Host,
		)
		return ContactResult{Outcome: StorageFailed}
	}

	if err := s.notifier.SendContactNotification(ctx, c); err != nil {
		metrics.IncEmail("contact", "failed")
		if serr := sess.Set(contactPendingKey, c.ID); serr != nil {
			s.logger.Error("remember pending contact", "error", serr)
		}
		s.keepForm(sess, f)
		s.logger.Error("send contact notification", "error", err, "contact_id", c.ID)
		return ContactResult{Outcome: TransportFailed}
	}
	metrics.IncEmail("contact", "sent")

	s.tick(sess, window.Times, now)
	sess.Remove(contactPendingKey)
	sess.Remove(ContactFormKey)

	s.logger.Info("contact request submitted", "contact_id", c.ID)
	return ContactResult{Outcome: Accepted, Contact: c}
}

func (s *ContactService) persist(ctx context.Context, sess *session.Session, c *model.Contact) error {
	var pendingID int64
	if ok, _ := sess.Get(contactPendingKey, &pendingID); ok && pendingID > 0 {
		existing, err := s.store.GetByID(ctx, pendingID)
		if err != nil {
			return err
		}
		if existing != nil {
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
			err := s.store.Update(ctx, c)
			if err == nil {
				return nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		sess.Remove(contactPendingKey)
		c.ID = 0
		c.CreatedAt = time.Time{}
	}
	return s.store.Create(ctx, c)
}

func (s *ContactService) keepForm(sess *session.Session, f form.ContactForm) {
	if err := sess.Set(ContactFormKey, f); err != nil {
		s.logger.Error("store contact form snapshot", "error", err)
	}
}

func (s *ContactService) tick(sess *session.Session, times []time.Time, now time.Time) {
	if err := ratelimit.Tick(sess, ContactTimesKey, times, now); err != nil {
		s.logger.Error("contact rate limit tick", "error", err)
	}
}
