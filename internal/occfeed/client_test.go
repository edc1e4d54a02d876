package occfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Fetch(t *testing.T) {
	body := "1AAL\tAAL\tAmerican Airlines\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Write([]byte(body))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithTimeout(5*time.Second))

	got, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got != body {
		t.Errorf("body = %q, want %q", got, body)
	}
}

func TestClient_Fetch_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL)

	_, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for 503 response")
	}

	var feedErr *FeedError
	if !errors.As(err, &feedErr) {
		t.Fatalf("err = %T, want *FeedError", err)
	}
	if feedErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", feedErr.StatusCode)
	}
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	// Reserve-then-close so the port is not listening.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, WithTimeout(time.Second))

	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
}
