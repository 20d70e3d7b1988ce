// Package websearch queries the DuckDuckGo instant answer API.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
	"github.com/Nimavk1313/Personal-Assistant/internal/resilience"
)

const (
	// DefaultBaseURL is the public instant answer endpoint.
	DefaultBaseURL = "https://api.duckduckgo.com"

	DefaultMaxResults = 5

	defaultRequestTimeout = 10 * time.Second
)

// Result is a single search hit.
type Result struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Body  string `json:"body"`
}

// Response holds the results for one query.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Options configure a Searcher.
type Options struct {
	BaseURL    string
	MaxResults int
	Safesearch string // strict, moderate, off
	Timelimit  string // d, w, m, y

	HTTPClient *http.Client
	Retry      resilience.RetryConfig
	Breaker    *resilience.Breaker
}

// Searcher runs web searches with retry and load shedding.
type Searcher struct {
	baseURL    string
	maxResults int
	safesearch string
	timelimit  string
	http       *http.Client
	retry      resilience.RetryConfig
	breaker    *resilience.Breaker
}

// New creates a searcher.
func New(opts Options) *Searcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	retry := opts.Retry
	if retry.MaxRetries == 0 {
		retry = resilience.SearchRetryConfig()
	}
	breaker := opts.Breaker
	if breaker == nil {
		breaker = resilience.NewBreaker("websearch", resilience.SearchConfig())
	}
	return &Searcher{
		baseURL:    opts.BaseURL,
		maxResults: opts.MaxResults,
		safesearch: opts.Safesearch,
		timelimit:  opts.Timelimit,
		http:       httpClient,
		retry:      retry,
		breaker:    breaker,
	}
}

// Search runs a query. A maxResults of zero or less uses the
// configured default.
func (s *Searcher) Search(ctx context.Context, query string, maxResults int) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "empty search query")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var resp *Response
	err := resilience.Retry(ctx, s.retry, func() error {
		result, err := resilience.ExecuteWithResult(s.breaker, func() (*Response, error) {
			return s.fetch(ctx, query, maxResults)
		})
		if errors.Is(err, resilience.ErrOpen) {
			return apperrors.Wrap(err, apperrors.CodeSearchUnavailable, "web search shed")
		}
		resp = result
		return err
	})
	return resp, err
}

// SearchFormatted runs a query and renders the hits as a context block
// for the LLM. Failures and empty result sets produce an empty string.
func (s *Searcher) SearchFormatted(ctx context.Context, query string, maxResults int) string {
	resp, err := s.Search(ctx, query, maxResults)
	if err != nil || len(resp.Results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Web search results:")
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "\n- %s\n  %s\n  %s", r.Title, r.Href, r.Body)
	}
	return b.String()
}

// instantAnswer mirrors the fields we use from the API response.
type instantAnswer struct {
	Heading       string  `json:"Heading"`
	AbstractText  string  `json:"AbstractText"`
	AbstractURL   string  `json:"AbstractURL"`
	RelatedTopics []topic `json:"RelatedTopics"`
}

// topic entries are either hits or nested groups with their own Topics.
type topic struct {
	Text     string  `json:"Text"`
	FirstURL string  `json:"FirstURL"`
	Topics   []topic `json:"Topics"`
}

func (s *Searcher) fetch(ctx context.Context, query string, maxResults int) (*Response, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")
	if kp := safesearchParam(s.safesearch); kp != "" {
		q.Set("kp", kp)
	}
	if s.timelimit != "" {
		q.Set("df", s.timelimit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSearchFailed, "build search request")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSearchFailed, "search request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.CodeSearchFailed, "search returned %d", resp.StatusCode)
	}

	var parsed instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSearchFailed, "decode search response")
	}

	return &Response{Query: query, Results: collectResults(parsed, maxResults)}, nil
}

func collectResults(ia instantAnswer, maxResults int) []Result {
	results := make([]Result, 0, maxResults)

	if ia.AbstractText != "" {
		results = append(results, Result{
			Title: ia.Heading,
			Href:  ia.AbstractURL,
			Body:  ia.AbstractText,
		})
	}

	var walk func(topics []topic)
	walk = func(topics []topic) {
		for _, t := range topics {
			if len(results) >= maxResults {
				return
			}
			if len(t.Topics) > 0 {
				walk(t.Topics)
				continue
			}
			if t.Text == "" && t.FirstURL == "" {
				continue
			}
			results = append(results, Result{
				Title: topicTitle(t.Text),
				Href:  t.FirstURL,
				Body:  t.Text,
			})
		}
	}
	walk(ia.RelatedTopics)
	return results
}

// topicTitle extracts the leading name from a "Name - description" text.
func topicTitle(text string) string {
	if i := strings.Index(text, " - "); i > 0 {
		return text[:i]
	}
	return text
}

func safesearchParam(level string) string {
	switch level {
	case "strict":
		return "1"
	case "moderate":
		return "-1"
	case "off":
		return "-2"
	default:
		return ""
	}
}
