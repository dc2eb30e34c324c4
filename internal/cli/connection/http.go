package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/infra/buildinfo"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/logger"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error body is read.
const maxErrorBody = 64 << 10

// maxBody caps how much of a success body is decoded.
const maxBody = 32 << 20

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	logger    logger.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithRateLimit allows at most perSecond requests per second with the given
// burst. A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *HTTPClient) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTLSConfig sets the TLS configuration used for https servers.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = cfg
		c.client.Transport = t
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = l
	}
}

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:   baseURL,
		userAgent: buildinfo.UserAgent(),
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request, presenting token when non-empty.
func (c *HTTPClient) Get(ctx context.Context, path string, token domain.Token) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, token, nil)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, "", body)
}

// Do performs a request. A non-nil body is JSON encoded.
//
// The returned error is non-nil only when no response was received;
// non-2xx responses are returned to the caller as-is.
func (c *HTTPClient) Do(ctx context.Context, method, path string, token domain.Token, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := ulid.Make().String()
	c.addHeaders(req, token, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	log := c.logger.WithContext(logger.WithRequestID(ctx, requestID)).With(
		"request_id", requestID,
		"method", method,
		"path", path,
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		log.Debug("request failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}

	log.Debug("request completed", "status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())
	return resp, nil
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(req *http.Request, token domain.Token, requestID string) {
	if !token.IsZero() {
		req.Header.Set("Authorization", "Bearer "+token.String())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
}

// IsSuccess reports whether resp carries a 2xx status.
func IsSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// DecodeJSON decodes the response body into target and closes it. The
// body must hold exactly one JSON value.
func DecodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBody))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("parse response: unexpected data after JSON value")
	}
	return nil
}

// ErrorMessage reads a JSON error body of the form {"message": "..."} and
// closes it. It returns "" when the body is absent or not in that shape.
func ErrorMessage(resp *http.Response) string {
	defer resp.Body.Close()

	// Other fields are ignored whatever their type.
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&fields); err != nil {
		return ""
	}
	var msg string
	if err := json.Unmarshal(fields["message"], &msg); err != nil {
		return ""
	}
	return msg
}

// Discard drains and closes the response body so the connection can be reused.
func Discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
