package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

const braveURL = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave Search API.
type Brave struct {
	apiKey string
	opts   Options
}

// NewBrave creates a Brave engine authenticated with apiKey.
func NewBrave(apiKey string, opts Options) *Brave {
	return &Brave{apiKey: apiKey, opts: opts.withDefaults(braveURL)}
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(b.opts.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	body, err := fetch(b.opts.HTTPClient, req)
	if err != nil {
		return nil, err
	}

	var results []Result
	gjson.GetBytes(body, "web.results").ForEach(func(_, r gjson.Result) bool {
		results = append(results, Result{
			Title: r.Get("title").String(),
			Link:  r.Get("url").String(),
		})
		return true
	})
	return limit(results, b.opts.MaxResults)
}
