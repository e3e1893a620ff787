package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const DefaultCookieName = "swimschool_session"

type Options struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Manager binds sessions to requests through a cookie.
type Manager struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

func NewManager(store Store, opts Options, logger *slog.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, opts: opts, logger: logger}
}

// Middleware loads the session named by the cookie, or starts a new one,
// and saves it after the handler returns if it changed.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.load(r)

		http.SetCookie(w, &http.Cookie{
			Name:     m.opts.CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(m.opts.TTL.Seconds()),
			HttpOnly: true,
			Secure:   m.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))

		if sess.Dirty() {
			if err := m.store.Save(r.Context(), sess.ID, sess.Snapshot()); err != nil {
				m.logger.Error("save session", "error", err)
			}
		}
	})
}

func (m *Manager) load(r *http.Request) *Session {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil {
		return New(uuid.NewString(), nil)
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return New(uuid.NewString(), nil)
	}

	data, err := m.store.Load(r.Context(), c.Value)
	if err != nil {
		m.logger.Error("load session", "error", err)
		return New(uuid.NewString(), nil)
	}
	if data == nil {
		return New(c.Value, nil)
	}
	return New(c.Value, data)
}
