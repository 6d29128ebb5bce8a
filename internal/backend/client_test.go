package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestForwardRelaysStatusAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"reply":"hi"}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL)
	status, body, err := client.Forward(context.Background(), "/api/chat", []byte(`{"message":"hello"}`))
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if status != http.StatusTeapot {
		t.Fatalf("status = %d, want upstream status relayed", status)
	}
	if string(body) != `{"reply":"hi"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestForwardNotConfigured(t *testing.T) {
	client := NewClient("")
	if _, _, err := client.Forward(context.Background(), "/api/chat", nil); err != ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}

	var nilClient *Client
	if _, _, err := nilClient.Forward(context.Background(), "/api/chat", nil); err != ErrNotConfigured {
		t.Fatalf("nil client err = %v, want ErrNotConfigured", err)
	}
}

func TestForwardTransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	client := NewClient(upstream.URL)
	if _, _, err := client.Forward(context.Background(), "/api/chat", nil); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestAnswerParsesBackendReply(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/qa" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"answer":"42"}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL)
	answer, err := client.Answer(context.Background(), "meaning of life?", "some context")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "42" {
		t.Fatalf("answer = %q", answer)
	}
}

func TestSummarizeDefaultsCitationsToEmptySlice(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"summary":"short version"}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL)
	summary, citations, err := client.Summarize(context.Background(), "notes.txt", "long text")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary != "short version" {
		t.Fatalf("summary = %q", summary)
	}
	if citations == nil {
		t.Fatal("citations should be an empty slice, not nil")
	}
}

func TestAnswerNon200IsError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL)
	if _, err := client.Answer(context.Background(), "q", ""); err == nil {
		t.Fatal("expected error for upstream 500")
	}
}
