package scraper

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Page is the outcome of one fetch that reached the server.
type Page struct {
	URL        string
	StatusCode int
	Body       string
}

// OK reports a 2xx status.
func (p Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// PageFetcher retrieves one result page. Transport failures are returned
// as errors; HTTP error statuses are reported through Page.StatusCode.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// HTTPFetcher issues plain GET requests with a browser-like User-Agent.
type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(userAgent string) *HTTPFetcher {
	return NewHTTPFetcherWithClient(resty.New(), userAgent)
}

func NewHTTPFetcherWithClient(client *resty.Client, userAgent string) *HTTPFetcher {
	client.SetHeader("User-Agent", userAgent)
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return Page{}, fmt.Errorf("http: get %s: %w", url, err)
	}

	return Page{
		URL:        url,
		StatusCode: res.StatusCode(),
		Body:       res.String(),
	}, nil
}
