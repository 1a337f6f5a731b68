package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetCaptions(t *testing.T) {
	var gotVideoID, gotLang string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVideoID = r.URL.Query().Get("v")
		gotLang = r.URL.Query().Get("lang")
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="1.5">never gonna</text>
  <text start="1.5" dur="1.5">give you up</text>
  <text start="3.0" dur="1.0">  </text>
</transcript>`)
	}))
	defer server.Close()

	client := NewTimedTextClientWithURL("en", server.URL)

	segments, err := client.GetCaptions(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotVideoID != "dQw4w9WgXcQ" || gotLang != "en" {
		t.Errorf("unexpected query: v=%q lang=%q", gotVideoID, gotLang)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 non-empty segments, got %d", len(segments))
	}
	if segments[0].Text != "never gonna" || segments[1].Text != "give you up" {
		t.Errorf("unexpected segments: %+v", segments)
	}
	if segments[0].Start != 0 || segments[1].Start != 1.5 {
		t.Errorf("unexpected timing: %+v", segments)
	}
}

func TestGetCaptionsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Captionless videos respond with 200 and an empty body.
	}))
	defer server.Close()

	client := NewTimedTextClientWithURL("en", server.URL)

	_, err := client.GetCaptions(context.Background(), "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error for captionless video")
	}
}

func TestGetCaptionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewTimedTextClientWithURL("en", server.URL)

	_, err := client.GetCaptions(context.Background(), "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestJoinSegments(t *testing.T) {
	segments := []CaptionSegment{
		{Text: "one"},
		{Text: "two"},
		{Text: "three"},
	}
	if got := JoinSegments(segments); got != "one two three" {
		t.Errorf("expected whitespace join in original order, got %q", got)
	}
}
