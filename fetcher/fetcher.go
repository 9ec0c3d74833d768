package fetcher

import (
	"context"
	"time"
)

// DefaultUserAgent is a desktop Chrome User-Agent so storefronts serve the
// same markup they would to a shopper.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Fetcher is the interface for retrieving a single page.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Result, error)
}

// Request contains everything a fetcher needs to retrieve a page.
type Request struct {
	URL       string
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
}

// Result is the output of a successful fetch.
type Result struct {
	Body       string
	StatusCode int
	FinalURL   string
}
