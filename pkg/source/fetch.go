package source

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// FetchResponse is the consumed fetch contract's result (spec.md §6): an
// HTTP-shaped response body plus enough metadata for the hypermedia
// actor to decide how to parse it.
type FetchResponse struct {
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
}

// Fetcher is the consumed fetch contract: given a URL and request headers,
// return a response or an error. Grounded on the plain net/http +
// context.Context client idiom of the reference service repo's datafeed
// client (infrastructure/datafeed/client.go).
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (*FetchResponse, error)
}

// HTTPFetcher is the default Fetcher, a thin wrapper over *http.Client.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher with a bounded default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", url)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}

	return &FetchResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}
