package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoResults is returned when an engine answered but found nothing.
var ErrNoResults = errors.New("search: no results")

// DefaultMaxResults is how many results an engine returns unless configured.
const DefaultMaxResults = 3

// maxBodyBytes bounds how much of a search response is read.
const maxBodyBytes = 2 << 20

// Result is one search hit.
type Result struct {
	Title string
	Link  string
}

// Engine is a web search backend.
type Engine interface {
	// Name is the engine's command name, e.g. "brave".
	Name() string
	// Search returns at most the configured number of results, or
	// ErrNoResults when there are none.
	Search(ctx context.Context, query string) ([]Result, error)
}

// Options are shared by all engines.
type Options struct {
	MaxResults int
	Timeout    time.Duration
	// BaseURL overrides the engine endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

func (o Options) withDefaults(baseURL string) Options {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	return o
}

// Format renders results as "title\nlink" blocks separated by blank lines.
func Format(results []Result) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, r.Title+"\n"+r.Link)
	}
	return strings.Join(blocks, "\n\n")
}

// fetch performs req and returns the body of a 2xx response.
func fetch(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}
	return body, nil
}

func limit(results []Result, n int) ([]Result, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}
