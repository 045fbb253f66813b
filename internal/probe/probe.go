// Package probe performs one bounded HTTP(S) fetch against a website. It has
// no knowledge of scheduling or scoring: transport-level failures come back
// as typed errors, while 4xx/5xx responses are valid data for downstream
// interpretation.
package probe

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

// ErrorKind classifies a probe failure.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"
	KindDNS        ErrorKind = "dns"
	KindTLS        ErrorKind = "tls"
	KindConnection ErrorKind = "connection"
	KindHTTP4xx    ErrorKind = "http4xx"
	KindHTTP5xx    ErrorKind = "http5xx"
)

// Error is a transport-level probe failure. Only these short-circuit a
// pipeline run; HTTP status codes never surface as an Error from Fetch.
type Error struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("probe %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindForStatus maps an HTTP status code onto the taxonomy for scoring
// purposes. Returns "" for 2xx/3xx.
func KindForStatus(status int) ErrorKind {
	switch {
	case status >= 500:
		return KindHTTP5xx
	case status >= 400:
		return KindHTTP4xx
	default:
		return ""
	}
}

// TLSInfo captures certificate metadata when the fetch negotiated TLS.
type TLSInfo struct {
	Present  bool
	Expiry   time.Time
	Issuer   string
	Subject  string
	DNSNames []string
	Version  uint16
}

// Result is the outcome of one successful fetch. A non-2xx/3xx status is
// still a Result, not an error.
type Result struct {
	URL            string
	FinalURL       string
	HTTPStatus     int
	ResponseTimeMs int
	BodyHash       string
	RawBody        []byte
	Headers        http.Header
	BodySize       int
	TLS            TLSInfo
	FetchedAt      time.Time
}

// Snippet returns a bounded prefix of the body for check records.
func (r *Result) Snippet() string {
	if len(r.RawBody) <= constants.RawCaptureLimitBytes {
		return string(r.RawBody)
	}
	return string(r.RawBody[:constants.RawCaptureLimitBytes])
}

// Client performs probes with a bounded timeout and redirect count. One
// client is shared across all pipeline workers; the limiter caps outbound
// request rate globally.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLimiter shares an outbound rate limiter with other egress clients.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithUserAgent sets the probe User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient builds a probe client with sane transport bounds.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: constants.DefaultProbeTimeout,
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConnsPerHost: 4,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= constants.DefaultMaxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: "PredGuard-Monitor/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs one GET against url. Transport failures return a *Error;
// any completed HTTP exchange returns a Result.
func (c *Client) Fetch(ctx context.Context, url string) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindTimeout, URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindConnection, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: classify(err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxBodyBytes))
	if err != nil {
		// Partial body is acceptable; hash whatever arrived.
		body = append([]byte(nil), body...)
	}
	elapsed := time.Since(start)

	sum := sha256.Sum256(body)
	result := &Result{
		URL:            url,
		FinalURL:       resp.Request.URL.String(),
		HTTPStatus:     resp.StatusCode,
		ResponseTimeMs: int(elapsed.Milliseconds()),
		BodyHash:       hex.EncodeToString(sum[:]),
		RawBody:        body,
		Headers:        resp.Header,
		BodySize:       len(body),
		FetchedAt:      start.UTC(),
	}

	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		cert := resp.TLS.PeerCertificates[0]
		result.TLS = TLSInfo{
			Present:  true,
			Expiry:   cert.NotAfter,
			Issuer:   cert.Issuer.CommonName,
			Subject:  cert.Subject.CommonName,
			DNSNames: cert.DNSNames,
			Version:  resp.TLS.Version,
		}
	}

	return result, nil
}

// classify maps a transport error onto the probe taxonomy.
func classify(err error) ErrorKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return KindTLS
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return KindTLS
	}
	if strings.Contains(err.Error(), "tls:") || strings.Contains(err.Error(), "x509:") {
		return KindTLS
	}

	return KindConnection
}
