package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

const serpURL = "https://serpapi.com/search"

// Serp queries SerpAPI's Google results.
type Serp struct {
	apiKey string
	opts   Options
}

// NewSerp creates a SerpAPI engine authenticated with apiKey.
func NewSerp(apiKey string, opts Options) *Serp {
	return &Serp{apiKey: apiKey, opts: opts.withDefaults(serpURL)}
}

func (s *Serp) Name() string { return "serp" }

func (s *Serp) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", s.apiKey)
	params.Set("num", strconv.Itoa(s.opts.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	body, err := fetch(s.opts.HTTPClient, req)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, r := range gjson.GetBytes(body, "organic_results").Array() {
		results = append(results, Result{
			Title: r.Get("title").String(),
			Link:  r.Get("link").String(),
		})
	}
	return limit(results, s.opts.MaxResults)
}
