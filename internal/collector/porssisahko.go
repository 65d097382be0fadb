package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"SpotPrice/internal/model"
)

// DefaultFeedURL is the public Finnish spot price feed.
const DefaultFeedURL = "https://api.porssisahko.net/v2/latest-prices.json"

const maxBodyBytes = 1 << 20

// FeedFetcher implements Fetcher against the porssisahko.net JSON feed.
type FeedFetcher struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// NewFeedFetcher creates a fetcher with a mandatory request timeout and
// optional proxy support.
func NewFeedFetcher(feedURL string, timeout time.Duration, proxyURL string) *FeedFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &FeedFetcher{
		URL:     feedURL,
		Timeout: timeout,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *FeedFetcher) Name() string { return "porssisahko" }

// FetchPrices downloads the feed and returns normalized slots, oldest first.
func (f *FeedFetcher) FetchPrices(ctx context.Context) ([]model.PriceSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &model.NetworkError{Endpoint: f.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.NetworkError{Endpoint: f.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &model.NetworkError{Endpoint: f.URL, Err: err}
	}

	var doc feedDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &model.ParseError{Index: -1, Message: "decode feed", Err: err}
	}
	return Normalize(doc.Prices)
}
