package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/dukerupert/swimschool/internal/form"
	"github.com/dukerupert/swimschool/internal/middleware"
	"github.com/dukerupert/swimschool/internal/model"
	"github.com/dukerupert/swimschool/internal/session"
	"github.com/dukerupert/swimschool/internal/submission"
)

type BookingHandler struct {
	svc *submission.BookingService
	renderer
}

func NewBookingHandler(svc *submission.BookingService, templates map[string]*template.Template, siteName string, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		svc:      svc,
		renderer: renderer{templates: templates, siteName: siteName, logger: logger},
	}
}

// Form renders the booking page. After a redirect it shows the one-shot
// summary (submit=1) or refills the form from the kept input (error=...).
func (h *BookingHandler) Form(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	data := h.page(form.BookingForm{}, nil)

	if q.Get("submit") == "1" {
		data["Success"] = true
		var summary form.BookingSnapshot
		if ok, err := sess.Pop(submission.BookingSummaryKey, &summary); ok && err == nil {
			data["Summary"] = &summary
		}
	}

	var kept form.BookingForm
	if ok, err := sess.Pop(submission.BookingFormKey, &kept); ok && err == nil {
		data["Form"] = kept
	}
	if code := q.Get("error"); code != "" {
		data["Error"] = code
	}

	h.render(w, http.StatusOK, "booking.html", data)
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/booking", "error", "invalid", "booking-error")
		return
	}

	meta := model.SubmissionMeta{
		IP:        middleware.RealIP(r),
		UserAgent: r.UserAgent(),
		Host:      r.Host,
	}
	res := h.svc.Submit(r.Context(), sess, r.PostForm, meta)

	switch res.Outcome {
	case submission.Accepted, submission.Spam:
		redirect(w, r, "/booking", "submit", "1", "booking-success")
	case submission.Invalid:
		data := h.page(res.Form, res.Errors)
		data["Error"] = res.Errors.BannerCode()
		h.render(w, http.StatusUnprocessableEntity, "booking.html", data)
	case submission.RateLimited:
		redirect(w, r, "/booking", "error", "rate", "booking-error")
	case submission.TransportFailed:
		redirect(w, r, "/booking", "error", "mail", "booking-error")
	default:
		redirect(w, r, "/booking", "error", "db", "booking-error")
	}
}

// Confirm handles the link from the confirmation email.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Confirm(r.Context(), r.PathValue("token"))
	if err != nil {
		h.logger.Error("confirm booking", "error", err)
		h.render(w, http.StatusInternalServerError, "confirm.html", map[string]any{
			"Title":  "Booking confirmation",
			"Status": "error",
		})
		return
	}

	code := http.StatusOK
	if status == model.ConfirmNotFound {
		code = http.StatusNotFound
	}
	h.render(w, code, "confirm.html", map[string]any{
		"Title":  "Booking confirmation",
		"Status": string(status),
	})
}

func (h *BookingHandler) page(f form.BookingForm, errs form.FieldErrors) map[string]any {
	return map[string]any{
		"Title":        "Course booking",
		"Form":         f,
		"Errors":       errs.Map(),
		"TimeSlots":    h.svc.TimeSlots(),
		"CoursePeriod": h.svc.CoursePeriod(),
	}
}
