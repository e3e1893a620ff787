// Package notify renders and sends the transactional emails of the booking
// and contact flows.
package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
	"time"

	"github.com/dukerupert/swimschool/internal/email"
	"github.com/dukerupert/swimschool/internal/model"
)

//go:embed templates/*.txt templates/*.html
var templateFS embed.FS

// ErrMailFailed wraps every render or transport failure.
var ErrMailFailed = errors.New("mail delivery failed")

type Config struct {
	From       string
	OwnerEmail string
	SiteName   string
}

type Dispatcher struct {
	transport email.Transport
	cfg       Config
	text      *texttemplate.Template
	html      *htmltemplate.Template
	logger    *slog.Logger
}

var funcs = map[string]any{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006")
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006 15:04")
	},
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
	"deref": func(p *string) string {
		if p == nil {
			return "-"
		}
		return *p
	},
}

func New(transport email.Transport, cfg Config, logger *slog.Logger) (*Dispatcher, error) {
	text, err := texttemplate.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	html, err := htmltemplate.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	return &Dispatcher{
		transport: transport,
		cfg:       cfg,
		text:      text,
		html:      html,
		logger:    logger,
	}, nil
}

type bookingData struct {
	SiteName   string
	Booking    *model.Booking
	ConfirmURL string
}

type contactData struct {
	SiteName string
	Contact  *model.Contact
}

// SendBookingConfirmationRequest mails the parent the link that confirms
// their booking.
func (d *Dispatcher) SendBookingConfirmationRequest(ctx context.Context, b *model.Booking, confirmURL string) error {
	data := bookingData{SiteName: d.cfg.SiteName, Booking: b, ConfirmURL: confirmURL}
	return d.send(ctx, "booking_confirm_request", email.Message{
		From:    d.cfg.From,
		To:      b.ParentEmail,
		ReplyTo: d.cfg.OwnerEmail,
		Subject: fmt.Sprintf("%s: please confirm your booking", d.cfg.SiteName),
		Tag:     "booking-confirmation-request",
	}, data)
}

// SendBookingOwnerNotification tells the school that a booking was confirmed.
func (d *Dispatcher) SendBookingOwnerNotification(ctx context.Context, b *model.Booking) error {
	data := bookingData{SiteName: d.cfg.SiteName, Booking: b}
	return d.send(ctx, "booking_owner", email.Message{
		From:    d.cfg.From,
		To:      d.cfg.OwnerEmail,
		ReplyTo: b.ParentEmail,
		Subject: fmt.Sprintf("Confirmed booking: %s (%s)", b.ChildName, b.DesiredTimeSlot),
		Tag:     "booking-owner",
	}, data)
}

// SendContactNotification forwards a contact request to the school and, if
// requested, a copy to the sender.
func (d *Dispatcher) SendContactNotification(ctx context.Context, c *model.Contact) error {
	data := contactData{SiteName: d.cfg.SiteName, Contact: c}
	err := d.send(ctx, "contact_owner", email.Message{
		From:    d.cfg.From,
		To:      d.cfg.OwnerEmail,
		ReplyTo: c.Email,
		Subject: fmt.Sprintf("Contact request from %s", c.Name),
		Tag:     "contact-owner",
	}, data)
	if err != nil {
		return err
	}
	if !c.Copy {
		return nil
	}
	return d.send(ctx, "contact_copy", email.Message{
		From:    d.cfg.From,
		To:      c.Email,
		ReplyTo: d.cfg.OwnerEmail,
		Subject: fmt.Sprintf("Your message to %s", d.cfg.SiteName),
		Tag:     "contact-copy",
	}, data)
}

func (d *Dispatcher) send(ctx context.Context, name string, msg email.Message, data any) error {
	var text bytes.Buffer
	if err := d.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return fmt.Errorf("%w: render %s.txt: %w", ErrMailFailed, name, err)
	}
	var html bytes.Buffer
	if err := d.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return fmt.Errorf("%w: render %s.html: %w", ErrMailFailed, name, err)
	}
	msg.TextBody = text.String()
	msg.HTMLBody = html.String()

	if err := d.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s to %s: %w", ErrMailFailed, name, msg.To, err)
	}
	d.logger.Debug("email sent", "template", name, "to", msg.To)
	return nil
}
