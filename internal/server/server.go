package server

import (
	"database/sql"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/swimschool/internal/handler"
	"github.com/dukerupert/swimschool/internal/middleware"
	"github.com/dukerupert/swimschool/internal/session"
	"github.com/dukerupert/swimschool/internal/submission"
)

type Server struct {
	db        *sql.DB
	bookingH  *handler.BookingHandler
	contactH  *handler.ContactHandler
	sessions  *session.Manager
	ipLimiter *middleware.IPLimiter
	logger    *slog.Logger
}

type Config struct {
	SiteName      string
	ThrottleRPS   float64
	ThrottleBurst int
}

func New(
	db *sql.DB,
	bookings *submission.BookingService,
	contacts *submission.ContactService,
	sessions *session.Manager,
	templates map[string]*template.Template,
	cfg Config,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:        db,
		bookingH:  handler.NewBookingHandler(bookings, templates, cfg.SiteName, logger.With("component", "booking")),
		contactH:  handler.NewContactHandler(contacts, templates, cfg.SiteName, logger.With("component", "contact")),
		sessions:  sessions,
		ipLimiter: middleware.NewIPLimiter(cfg.ThrottleRPS, cfg.ThrottleBurst),
		logger:    logger,
	}
}

// IPLimiter returns the per-IP limiter for cleanup tasks.
func (s *Server) IPLimiter() *middleware.IPLimiter {
	return s.ipLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	forms := http.NewServeMux()
	forms.HandleFunc("GET /booking", s.bookingH.Form)
	forms.HandleFunc("POST /booking", s.throttled(s.bookingH.Submit))
	forms.HandleFunc("GET /booking/confirm/{token}", s.bookingH.Confirm)
	forms.HandleFunc("GET /contact", s.contactH.Form)
	forms.HandleFunc("POST /contact", s.throttled(s.contactH.Submit))

	formsHandler := s.sessions.Middleware(forms)
	mux.Handle("/booking", formsHandler)
	mux.Handle("/booking/", formsHandler)
	mux.Handle("/contact", formsHandler)

	return middleware.RequestLogger(s.logger)(mux)
}

func (s *Server) throttled(h http.HandlerFunc) http.HandlerFunc {
	mw := middleware.Throttle(s.ipLimiter, middleware.RealIP)
	return mw(h).ServeHTTP
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
