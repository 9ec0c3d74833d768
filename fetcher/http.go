package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/themescout/models"
	"golang.org/x/net/proxy"
)

const defaultMaxBody = 10 << 20

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// Options configures an HTTPFetcher.
type Options struct {
	// Proxy is an optional proxy URL. http:// proxies tunnel https targets
	// with CONNECT; socks5:// and socks5h:// proxies carry every connection.
	// Either way the TLS handshake to the target keeps the Chrome fingerprint.
	Proxy string

	// MaxBodyBytes caps how much of the response body is read. Default: 10 MiB.
	MaxBodyBytes int64
}

// dialFunc matches net.Dialer.DialContext.
type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// HTTPFetcher retrieves pages over plain net/http with a Chrome TLS
// fingerprint. It is safe for concurrent use.
type HTTPFetcher struct {
	client  *http.Client
	maxBody int64

	// dial opens raw TCP connections, directly or through a SOCKS5 proxy.
	dial dialFunc

	// connectProxy, when set, is an http:// proxy used to CONNECT-tunnel
	// TLS connections before the utls handshake.
	connectProxy *url.URL

	// rootCAs overrides the system roots. Nil in production.
	rootCAs *x509.CertPool
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}

	f := &HTTPFetcher{
		maxBody: maxBody,
		dial:    (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
	}

	transport := &http.Transport{
		DialTLSContext:    f.dialTLSChrome,
		ForceAttemptHTTP2: false,
	}

	if opts.Proxy != "" {
		if proxyURL, err := url.Parse(opts.Proxy); err == nil {
			switch proxyURL.Scheme {
			case "http":
				f.connectProxy = proxyURL
				// Plain-http targets go through the proxy as absolute-URI
				// requests; https targets are tunnelled by dialTLSChrome.
				transport.Proxy = func(r *http.Request) (*url.URL, error) {
					if r.URL.Scheme == "http" {
						return proxyURL, nil
					}
					return nil, nil
				}
			case "socks5", "socks5h":
				if d, err := proxy.FromURL(proxyURL, &net.Dialer{Timeout: 10 * time.Second}); err == nil {
					if cd, ok := d.(proxy.ContextDialer); ok {
						f.dial = cd.DialContext
					}
				}
			}
		}
	}
	transport.DialContext = f.dial

	f.client = &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
	return f
}

// Fetch issues a GET for req.URL. Transport failures, timeouts and any
// status >= 400 are returned as *models.DetectError.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *Request) (*Result, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, models.NewDetectError(models.ErrCodeInvalidURL, "invalid url", err)
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, models.NewDetectError(models.ErrCodeInvalidURL,
			fmt.Sprintf("not an absolute http(s) url: %q", req.URL), nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, models.NewDetectError(models.ErrCodeInvalidURL, "invalid url", err)
	}

	ua := req.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	httpReq.Header.Set("User-Agent", ua)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.NewDetectError(models.ErrCodeBadStatus,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode, req.URL), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, classify(err)
	}

	return &Result{
		Body:       string(body),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// classify maps a transport error to a coded DetectError.
func classify(err error) *models.DetectError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return models.NewDetectError(models.ErrCodeFetchTimeout, "request timed out", err)
	}
	return models.NewDetectError(models.ErrCodeFetchFailed, "request failed", err)
}

// dialTLSChrome establishes a TLS connection using the Chrome fingerprint,
// tunnelling through the configured proxy first when there is one.
func (f *HTTPFetcher) dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	var conn net.Conn
	var err error
	if f.connectProxy != nil {
		conn, err = dialConnect(ctx, f.dial, f.connectProxy, addr)
	} else {
		conn, err = f.dial(ctx, network, addr)
	}
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host, RootCAs: f.rootCAs}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetcher: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}
