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

type ContactHandler struct {
	svc *submission.ContactService
	renderer
}

func NewContactHandler(svc *submission.ContactService, templates map[string]*template.Template, siteName string, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		svc:      svc,
		renderer: renderer{templates: templates, siteName: siteName, logger: logger},
	}
}

func (h *ContactHandler) Form(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	data := contactPage(form.ContactForm{}, nil)
	if q.Get("sent") == "1" {
		data["Success"] = true
	}

	var kept form.ContactForm
	if ok, err := sess.Pop(submission.ContactFormKey, &kept); ok && err == nil {
		data["Form"] = kept
	}
	if code := q.Get("error"); code != "" {
		data["Error"] = code
	}

	h.render(w, http.StatusOK, "contact.html", data)
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/contact", "error", "invalid", "contact-error")
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
		redirect(w, r, "/contact", "sent", "1", "contact-success")
	case submission.Invalid:
		data := contactPage(res.Form, res.Errors)
		data["Error"] = res.Errors.BannerCode()
		h.render(w, http.StatusUnprocessableEntity, "contact.html", data)
	case submission.RateLimited:
		redirect(w, r, "/contact", "error", "rate", "contact-error")
	case submission.TransportFailed:
		redirect(w, r, "/contact", "error", "mail", "contact-error")
	default:
		redirect(w, r, "/contact", "error", "db", "contact-error")
	}
}

func contactPage(f form.ContactForm, errs form.FieldErrors) map[string]any {
	return map[string]any{
		"Title":  "Contact",
		"Form":   f,
		"Errors": errs.Map(),
	}
}
