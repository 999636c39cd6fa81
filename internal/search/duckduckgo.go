package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the keyless DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	opts Options
}

func NewDuckDuckGo(opts Options) *DuckDuckGo {
	return &DuckDuckGo{opts: opts.withDefaults(duckDuckGoURL)}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	searchURL := fmt.Sprintf("%s?q=%s", d.opts.BaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; assistbot/1.0)")

	body, err := fetch(d.opts.HTTPClient, req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo html: %w", err)
	}

	var results []Result
	doc.Find("a.result__a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		results = append(results, Result{
			Title: strings.TrimSpace(a.Text()),
			Link:  unwrapRedirect(href),
		})
		return len(results) < d.opts.MaxResults
	})
	return limit(results, d.opts.MaxResults)
}

// unwrapRedirect extracts the target of DuckDuckGo's /l/?uddg= links.
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
