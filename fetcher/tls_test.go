package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/use-agent/themescout/models"
)

// helloRecorder captures the ClientHello seen by a test TLS server.
type helloRecorder struct {
	mu    sync.Mutex
	hello *tls.ClientHelloInfo
}

func (h *helloRecorder) get() *tls.ClientHelloInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hello
}

func newTLSTarget(t *testing.T, body string) (*httptest.Server, *helloRecorder) {
	t.Helper()
	rec := &helloRecorder{}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	srv.TLS = &tls.Config{
		GetConfigForClient: func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
			rec.mu.Lock()
			rec.hello = hello
			rec.mu.Unlock()
			return nil, nil
		},
	}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv, rec
}

func trusting(f *HTTPFetcher, srv *httptest.Server) *HTTPFetcher {
	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	f.rootCAs = pool
	return f
}

// hasGREASE reports whether any cipher suite is a GREASE value, which Chrome
// sends and crypto/tls never does.
func hasGREASE(suites []uint16) bool {
	for _, s := range suites {
		if s&0x0f0f == 0x0a0a {
			return true
		}
	}
	return false
}

func TestFetch_TLSChromeFingerprint(t *testing.T) {
	srv, rec := newTLSTarget(t, "secure page")

	f := trusting(NewHTTPFetcher(Options{}), srv)
	t.Cleanup(f.client.CloseIdleConnections)

	res, err := f.Fetch(context.Background(), &Request{URL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Body != "secure page" {
		t.Errorf("Body = %q", res.Body)
	}

	hello := rec.get()
	if hello == nil {
		t.Fatal("server saw no ClientHello")
	}
	if len(hello.SupportedProtos) != 1 || hello.SupportedProtos[0] != "http/1.1" {
		t.Errorf("ALPN = %v, want [http/1.1]", hello.SupportedProtos)
	}
	if !hasGREASE(hello.CipherSuites) {
		t.Errorf("expected Chrome GREASE cipher suites, got %v", hello.CipherSuites)
	}
}

func TestFetch_TLSVerifiesCertificate(t *testing.T) {
	srv, _ := newTLSTarget(t, "secure page")

	_, err := NewHTTPFetcher(Options{}).Fetch(context.Background(), &Request{URL: srv.URL, Timeout: 5 * time.Second})
	if code := codeOf(t, err); code != models.ErrCodeFetchFailed {
		t.Errorf("code = %s, want %s", code, models.ErrCodeFetchFailed)
	}
	if !strings.Contains(err.Error(), "certificate") {
		t.Errorf("expected certificate verification failure, got %v", err)
	}
}

// connectProxy is a minimal forward proxy: CONNECT requests are tunnelled,
// absolute-URI requests are answered directly.
type connectProxy struct {
	mu       sync.Mutex
	connects []string
	forwards []string
}

func (p *connectProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodConnect {
		p.mu.Lock()
		p.forwards = append(p.forwards, r.URL.String())
		p.mu.Unlock()
		fmt.Fprint(w, "via proxy")
		return
	}

	p.mu.Lock()
	p.connects = append(p.connects, r.Host)
	p.mu.Unlock()

	dst, err := net.Dial("tcp", r.Host)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	src, buf, err := w.(http.Hijacker).Hijack()
	if err != nil {
		dst.Close()
		return
	}
	src.Write([]byte("HTTP/1.1 200 Connection established\r\n\r\n"))

	go func() {
		io.Copy(dst, buf)
		dst.Close()
	}()
	io.Copy(src, dst)
	src.Close()
}

func TestFetch_HTTPSThroughConnectProxy(t *testing.T) {
	px := &connectProxy{}
	proxySrv := httptest.NewServer(px)
	t.Cleanup(proxySrv.Close)

	target, rec := newTLSTarget(t, "tunnelled page")

	f := trusting(NewHTTPFetcher(Options{Proxy: proxySrv.URL}), target)
	t.Cleanup(f.client.CloseIdleConnections)

	res, err := f.Fetch(context.Background(), &Request{URL: target.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Body != "tunnelled page" {
		t.Errorf("Body = %q", res.Body)
	}

	px.mu.Lock()
	connects := px.connects
	px.mu.Unlock()
	wantHost := strings.TrimPrefix(target.URL, "https://")
	if len(connects) != 1 || connects[0] != wantHost {
		t.Errorf("CONNECT targets = %v, want [%s]", connects, wantHost)
	}

	// The fingerprint survives the tunnel.
	if hello := rec.get(); hello == nil || !hasGREASE(hello.CipherSuites) {
		t.Errorf("expected Chrome ClientHello through proxy, got %+v", hello)
	}
}

func TestFetch_PlainHTTPThroughProxy(t *testing.T) {
	px := &connectProxy{}
	proxySrv := httptest.NewServer(px)
	t.Cleanup(proxySrv.Close)

	f := NewHTTPFetcher(Options{Proxy: proxySrv.URL})
	t.Cleanup(f.client.CloseIdleConnections)

	res, err := f.Fetch(context.Background(), &Request{URL: "http://store.invalid/page", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Body != "via proxy" {
		t.Errorf("Body = %q, want via proxy", res.Body)
	}

	px.mu.Lock()
	defer px.mu.Unlock()
	if len(px.forwards) != 1 || px.forwards[0] != "http://store.invalid/page" {
		t.Errorf("forwarded = %v", px.forwards)
	}
}

func TestFetch_ConnectProxyRefused(t *testing.T) {
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	t.Cleanup(proxySrv.Close)

	_, err := NewHTTPFetcher(Options{Proxy: proxySrv.URL}).Fetch(context.Background(), &Request{URL: "https://store.invalid/", Timeout: 5 * time.Second})
	if code := codeOf(t, err); code != models.ErrCodeFetchFailed {
		t.Errorf("code = %s, want %s", code, models.ErrCodeFetchFailed)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("expected proxy status in error, got %v", err)
	}
}
