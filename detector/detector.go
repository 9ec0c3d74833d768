package detector

import (
	"context"
	"time"

	"github.com/use-agent/themescout/fetcher"
)

// DefaultTimeout bounds the outbound fetch.
const DefaultTimeout = 10 * time.Second

// Options configures a Detector.
type Options struct {
	// Timeout for the page fetch. Default: 10s.
	Timeout time.Duration

	// UserAgent sent with the fetch. Default: fetcher.DefaultUserAgent.
	UserAgent string
}

// Detector finds the Shopify theme a storefront is running.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	fetcher fetcher.Fetcher
	opts    Options
}

// New creates a Detector that retrieves pages through f.
func New(f fetcher.Fetcher, opts Options) *Detector {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = fetcher.DefaultUserAgent
	}
	return &Detector{fetcher: f, opts: opts}
}

// Detect fetches url and reports which theme it uses. Failures are folded
// into the returned Result; Detect never returns an error.
//
// Flow:
//  1. Fetch the page (FetchError on any transport or status failure).
//  2. Find the first <script> containing the marker (NotFound if none).
//  3. Capture the Shopify.theme object literal (NotFound if absent).
//  4. Decode it and read "name" (ParseError on invalid JSON).
func (d *Detector) Detect(ctx context.Context, url string) Result {
	page, err := d.fetcher.Fetch(ctx, &fetcher.Request{
		URL:       url,
		UserAgent: d.opts.UserAgent,
		Timeout:   d.opts.Timeout,
	})
	if err != nil {
		return fetchFailed(err)
	}

	script, ok := findMarkerScript(page.Body)
	if !ok {
		return notFound()
	}

	payload, ok := extractPayload(script)
	if !ok {
		return notFound()
	}

	name, err := decodeThemeName(payload)
	if err != nil {
		return parseFailed(err)
	}
	return found(name)
}
