package session

import (
	"context"
	"testing"
)

func TestSessionSetGet(t *testing.T) {
	s := New("abc", nil)

	if err := s.Set("contact.times", []int{1, 2, 3}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !s.Dirty() {
		t.Error("expected session to be dirty after Set")
	}

	var got []int
	ok, err := s.Get("contact.times", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to be present")
	}
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestSessionGetMissing(t *testing.T) {
	s := New("abc", nil)

	var v string
	ok, err := s.Get("missing", &v)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected missing key to report false")
	}
	if s.Dirty() {
		t.Error("reading should not mark the session dirty")
	}
}

func TestSessionPop(t *testing.T) {
	s := New("abc", nil)
	s.Set("booking.form", map[string]string{"childName": "Max"})

	var v map[string]string
	ok, err := s.Pop("booking.form", &v)
	if err != nil || !ok {
		t.Fatalf("pop: ok=%v err=%v", ok, err)
	}
	if v["childName"] != "Max" {
		t.Errorf("childName = %q, want Max", v["childName"])
	}
	if s.Has("booking.form") {
		t.Error("expected key to be removed after Pop")
	}
}

func TestSessionRemoveMissingNotDirty(t *testing.T) {
	s := New("abc", nil)
	s.Remove("nothing")
	if s.Dirty() {
		t.Error("removing an absent key should not mark the session dirty")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil session on empty context")
	}

	s := New("abc", nil)
	ctx := NewContext(context.Background(), s)
	if got := FromContext(ctx); got != s {
		t.Errorf("FromContext = %v, want %v", got, s)
	}
}
