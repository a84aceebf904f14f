package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateTipDisabled(t *testing.T) {
	c := NewClient("")
	if c.Enabled() {
		t.Fatalf("client without key should be disabled")
	}
	if _, err := c.GenerateTip(context.Background(), "hi"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestGenerateTipSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  Save a bit more each month!  "}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithModel("gemini-2.0-flash"))
	tip, err := c.GenerateTip(context.Background(), "advise me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tip != "Save a bit more each month!" {
		t.Fatalf("tip = %q", tip)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("key query param = %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 ||
		gotBody.Contents[0].Parts[0].Text != "advise me" {
		t.Fatalf("request body = %+v", gotBody)
	}
}

func TestGenerateTipFailureModes(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `boom`, nil},
		{"rate limited", http.StatusTooManyRequests, `{}`, nil},
		{"malformed json", http.StatusOK, `{"candidates":[`, nil},
		{"empty candidates", http.StatusOK, `{"candidates":[]}`, ErrNoCandidates},
		{"missing parts", http.StatusOK, `{"candidates":[{"content":{}}]}`, ErrNoCandidates},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`, ErrNoCandidates},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient("k", WithBaseURL(srv.URL))
			_, err := c.GenerateTip(context.Background(), "p")
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestGenerateTipTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	start := time.Now()
	_, err := c.GenerateTip(context.Background(), "p")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("call did not respect timeout, took %v", elapsed)
	}
	if !strings.Contains(err.Error(), "generateContent") {
		t.Fatalf("timeout error should be wrapped: %v", err)
	}
}
