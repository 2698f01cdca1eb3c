// Package session provides the HTTP session shared by API clients and the
// download engine.
//
// A [Session] wraps an [http.Client] with a fixed per-request timeout, a
// tuned transport and Accept negotiation. Failures are reported as [*Error]
// values whose [Kind] separates the cases callers present differently:
//
//   - [KindTimeout]: name resolution failures and timeouts
//   - [KindCertificate]: TLS certificate validation failures
//   - [KindStatus]: the server answered with a non-2xx status
//   - [KindNetwork]: any other transport failure
//
// Cancelling a transfer is done by cancelling the request context; in-flight
// requests then fail as ordinary transport errors.
package session

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/observability"
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies requests made by this module.
const DefaultUserAgent = "mcinstall"

// Options configures a [Session].
type Options struct {
	// Timeout bounds each request including reading the body (default 30s).
	Timeout time.Duration
	// UserAgent is sent with every request (default "mcinstall").
	UserAgent string
	// Transport overrides the default tuned transport, mainly for tests.
	Transport http.RoundTripper
}

// Session issues HTTP requests. It is safe for concurrent use.
type Session struct {
	client    *http.Client
	userAgent string
}

// New returns a session configured by opts.
func New(opts Options) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Transport == nil {
		opts.Transport = newTransport()
	}
	return &Session{
		client:    &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		userAgent: opts.UserAgent,
	}
}

// Default returns a session with default options.
func Default() *Session {
	return New(Options{})
}

// Client returns the underlying HTTP client.
func (s *Session) Client() *http.Client {
	return s.client
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewRequest builds a GET request with the session headers. accept may be
// empty.
func (s *Session) NewRequest(ctx context.Context, url, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req, nil
}

// Do sends req and returns the response whatever its status. Transport
// failures are returned as [*Error].
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, &Error{Kind: Classify(err), Method: req.Method, URL: req.URL.String(), Err: err}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// Get performs a GET and requires a 2xx status. On a non-2xx status the body
// is drained and closed and a [KindStatus] error returned. The caller closes
// the body of a successful response.
func (s *Session) Get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := s.NewRequest(ctx, url, accept)
	if err != nil {
		return nil, err
	}
	resp, err := s.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &Error{Kind: KindStatus, Method: req.Method, URL: url, Status: resp.StatusCode}
	}
	return resp, nil
}

// Fetch performs a GET and returns the whole body.
func (s *Session) Fetch(ctx context.Context, url, accept string) ([]byte, error) {
	resp, err := s.Get(ctx, url, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: Classify(err), Method: http.MethodGet, URL: url, Err: err}
	}
	return data, nil
}

// Kind classifies a transport failure.
type Kind string

// Failure kinds.
const (
	KindNetwork     Kind = "network"
	KindTimeout     Kind = "timeout"
	KindCertificate Kind = "certificate"
	KindStatus      Kind = "http_status"
)

// Error is a failed HTTP exchange.
type Error struct {
	Kind   Kind
	Method string
	URL    string
	Status int // set for KindStatus
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code maps the failure kind to an error code.
func (e *Error) Code() mcerrors.Code {
	switch e.Kind {
	case KindTimeout:
		return mcerrors.ErrCodeTimeout
	case KindCertificate:
		return mcerrors.ErrCodeCertificate
	case KindStatus:
		return mcerrors.ErrCodeHTTPStatus
	}
	return mcerrors.ErrCodeNetwork
}

// Temporary reports whether retrying the request may succeed: timeouts,
// connection failures, 429 and 5xx statuses.
func (e *Error) Temporary() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork:
		return true
	case KindStatus:
		return e.Status == http.StatusTooManyRequests || e.Status >= 500
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Classify returns the kind of a transport error.
func Classify(err error) Kind {
	var (
		dnsErr     *net.DNSError
		netErr     net.Error
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		verifyErr  *tls.CertificateVerificationError
	)
	switch {
	case errors.As(err, &verifyErr), errors.As(err, &unknownCA),
		errors.As(err, &hostErr), errors.As(err, &invalidErr):
		return KindCertificate
	case errors.As(err, &dnsErr):
		return KindTimeout
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return KindTimeout
	}
	return KindNetwork
}
