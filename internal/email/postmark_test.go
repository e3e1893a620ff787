package email

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testMessage() Message {
	return Message{
		From:     "swimschool@example.com",
		To:       "parent@example.com",
		ReplyTo:  "office@example.com",
		Subject:  "Please confirm your booking",
		TextBody: "Click the link",
		HTMLBody: "<p>Click the link</p>",
		Tag:      "booking-confirmation",
	}
}

func TestSend(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	if err := client.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "parent@example.com" {
		t.Errorf("To = %q, want %q", received.To, "parent@example.com")
	}
	if received.From != "swimschool@example.com" {
		t.Errorf("From = %q, want %q", received.From, "swimschool@example.com")
	}
	if received.ReplyTo != "office@example.com" {
		t.Errorf("ReplyTo = %q, want %q", received.ReplyTo, "office@example.com")
	}
	if received.Tag != "booking-confirmation" {
		t.Errorf("Tag = %q, want %q", received.Tag, "booking-confirmation")
	}
	if received.MessageStream != "outbound" {
		t.Errorf("MessageStream = %q, want outbound", received.MessageStream)
	}
}

func TestSendMessageStreamOption(t *testing.T) {
	var received postmarkEmail
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("test-token",
		WithMessageStream("forms"),
		WithHTTPClient(&http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}),
	)
	if err := client.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if received.MessageStream != "forms" {
		t.Errorf("MessageStream = %q, want forms", received.MessageStream)
	}
}

func TestSendNotConfigured(t *testing.T) {
	client := NewClient("")

	if err := client.Send(context.Background(), testMessage()); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"ErrorCode": 300, "Message": "Invalid email request"}`))
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	err := client.Send(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected error for API failure")
	}
	if !strings.Contains(err.Error(), "Invalid email request") {
		t.Errorf("error = %q, want postmark message included", err)
	}
}

func TestConfigured(t *testing.T) {
	if !NewClient("token").Configured() {
		t.Error("expected Configured() = true")
	}
	if NewClient("").Configured() {
		t.Error("expected Configured() = false")
	}
}

func TestLogTransport(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	if err := NewLogTransport(logger).Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), "parent@example.com") {
		t.Errorf("log output missing recipient: %s", buf.String())
	}
}

// rewriteTransport redirects all requests to a test server URL.
type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.target[len("http://"):]
	return t.base.RoundTrip(req)
}
