package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
	"github.com/Nimavk1313/Personal-Assistant/internal/resilience"
)

const sampleAnswer = `{
	"Heading": "Go (programming language)",
	"AbstractText": "Go is a statically typed language.",
	"AbstractURL": "https://en.wikipedia.org/wiki/Go",
	"RelatedTopics": [
		{"Text": "Gopher - the Go mascot", "FirstURL": "https://go.dev/gopher"},
		{"Topics": [
			{"Text": "Goroutine - lightweight thread", "FirstURL": "https://go.dev/goroutine"}
		]},
		{"Text": "", "FirstURL": ""}
	]
}`

func testRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL:    srv.URL,
		MaxResults: 5,
		Safesearch: "moderate",
		Timelimit:  "y",
		Retry:      testRetry(),
	})
}

func TestSearchParsesResults(t *testing.T) {
	var gotQuery map[string][]string
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleAnswer))
	})

	resp, err := s.Search(context.Background(), "golang", 0)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(resp.Results))
	}
	if resp.Results[0].Title != "Go (programming language)" {
		t.Errorf("abstract title = %q", resp.Results[0].Title)
	}
	if resp.Results[1].Title != "Gopher" {
		t.Errorf("topic title = %q, want name before the dash", resp.Results[1].Title)
	}
	if resp.Results[2].Href != "https://go.dev/goroutine" {
		t.Errorf("nested topic href = %q", resp.Results[2].Href)
	}

	if got := gotQuery["q"]; len(got) != 1 || got[0] != "golang" {
		t.Errorf("q = %v", got)
	}
	if got := gotQuery["kp"]; len(got) != 1 || got[0] != "-1" {
		t.Errorf("kp = %v, want moderate", got)
	}
	if got := gotQuery["df"]; len(got) != 1 || got[0] != "y" {
		t.Errorf("df = %v", got)
	}
}

func TestSearchCapsResults(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleAnswer))
	})

	resp, err := s.Search(context.Background(), "golang", 2)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2", len(resp.Results))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	s := New(Options{BaseURL: "http://localhost:1", Retry: testRetry()})
	_, err := s.Search(context.Background(), "  ", 0)
	if !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("err = %v, want INVALID_ARGUMENT", err)
	}
}

func TestSearchRetriesServerError(t *testing.T) {
	calls := 0
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleAnswer))
	})

	if _, err := s.Search(context.Background(), "golang", 0); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSearchShedsWhenBreakerOpen(t *testing.T) {
	breaker := resilience.NewBreaker("search-test", resilience.Config{
		Threshold: 1, ResetTimeout: time.Hour, HalfOpenSuccesses: 1,
	})
	breaker.Failure()

	s := New(Options{BaseURL: "http://localhost:1", Retry: testRetry(), Breaker: breaker})
	_, err := s.Search(context.Background(), "golang", 0)
	if !apperrors.IsCode(err, apperrors.CodeSearchUnavailable) {
		t.Errorf("err = %v, want SEARCH_UNAVAILABLE", err)
	}
}

func TestSearchFormatted(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleAnswer))
	})

	got := s.SearchFormatted(context.Background(), "golang", 1)
	if !strings.HasPrefix(got, "Web search results:") {
		t.Errorf("formatted output = %q", got)
	}
	if !strings.Contains(got, "- Go (programming language)") {
		t.Errorf("formatted output missing title: %q", got)
	}
}

func TestSearchFormattedSwallowsFailure(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if got := s.SearchFormatted(context.Background(), "golang", 0); got != "" {
		t.Errorf("formatted output = %q, want empty on failure", got)
	}
}

func TestSearchFormattedEmptyResults(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"RelatedTopics": []}`))
	})

	if got := s.SearchFormatted(context.Background(), "golang", 0); got != "" {
		t.Errorf("formatted output = %q, want empty", got)
	}
}
