package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerPersistsAcrossRequests(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	m := NewManager(store, Options{}, testLogger())

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromContext(r.Context())
		var n int
		sess.Get("count", &n)
		sess.Set("count", n+1)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != DefaultCookieName {
		t.Fatalf("cookies = %v, want one %s cookie", cookies, DefaultCookieName)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	handler.ServeHTTP(httptest.NewRecorder(), req)

	data, _ := store.Load(context.Background(), cookies[0].Value)
	if string(data["count"]) != "2" {
		t.Errorf("count = %s, want 2", data["count"])
	}
}

func TestManagerRejectsForgedID(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Hour), Options{}, testLogger())

	var got string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context()).ID
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "../../etc/passwd"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == "../../etc/passwd" || got == "" {
		t.Errorf("session id = %q, want a fresh uuid", got)
	}
}
