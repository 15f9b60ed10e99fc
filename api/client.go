package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 15 * time.Second
	// HeaderRequestID carries the per-call request id.
	HeaderRequestID = "X-Request-Id"

	bearerPrefix = "Bearer "
	maxBodyBytes = 8 << 20
	tracerName   = "github.com/MrEthical07/goConsole/api"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to [TokenSource].
type TokenFunc func() string

// Token returns f().
func (f TokenFunc) Token() string { return f() }

// Config configures a [Client].
type Config struct {
	// BaseURL is the absolute API root, for example "http://localhost:8080/api".
	BaseURL string
	// Timeout bounds each call. Zero selects DefaultTimeout; negative disables it.
	Timeout time.Duration
	// HTTPClient defaults to a new http.Client.
	HTTPClient *http.Client
	Tokens     TokenSource
	// OnUnauthorized fires once per call answered with 401 (HTTP status or envelope code)
	// when the call was authenticated through Tokens. token is the value that was sent.
	OnUnauthorized func(ctx context.Context, token string, err error)
	Logger         *slog.Logger
	UserAgent      string
	// RateLimit caps outbound calls per second. Zero disables throttling.
	RateLimit float64
	RateBurst int
}

// Client sends requests to the backend and decodes its envelopes.
//
// A Client is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	timeout        time.Duration
	tokens         TokenSource
	onUnauthorized func(ctx context.Context, token string, err error)
	logger         *slog.Logger
	userAgent      string
	limiter        *rate.Limiter
}

// New validates cfg and returns a [Client].
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api: base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("api: base URL must be http or https")
	}
	if u.Host == "" {
		return nil, errors.New("api: base URL must include a host")
	}

	c := &Client{
		baseURL:        base,
		http:           cfg.HTTPClient,
		timeout:        cfg.Timeout,
		tokens:         cfg.Tokens,
		onUnauthorized: cfg.OnUnauthorized,
		logger:         cfg.Logger,
		userAgent:      cfg.UserAgent,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return c, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is sent as JSON. json.RawMessage and []byte are sent unchanged.
	Body any
	// Token overrides the TokenSource for this call. A 401 on such a call does not fire
	// OnUnauthorized since it says nothing about the current session.
	Token string
	// NoAuth skips the TokenSource.
	NoAuth bool
}

func (r Request) sessionBound() bool {
	return r.Token == "" && !r.NoAuth
}

// AuthorizationHeader returns the Authorization value for token. A token that already
// starts with "Bearer " is returned unchanged.
func AuthorizationHeader(token string) string {
	if strings.HasPrefix(token, bearerPrefix) {
		return token
	}
	return bearerPrefix + token
}

// Do sends a request with an optional JSON body and decodes the envelope data into out
// when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	env, err := c.Send(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return env.Decode(out)
}

// Send performs req and returns the successful envelope.
func (c *Client) Send(ctx context.Context, req Request) (Envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Client.Send()",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	env, status, err := c.send(ctx, req)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return env, err
}

func (c *Client) send(ctx context.Context, req Request) (Envelope, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Envelope{}, 0, classifyTransport(err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, token, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return Envelope{}, 0, err
	}
	requestID := httpReq.Header.Get(HeaderRequestID)

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		err = classifyTransport(err)
		c.logger.DebugContext(ctx, "backend request failed",
			"method", req.Method, "path", req.Path, "request_id", requestID, "error", err)
		return Envelope{}, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Envelope{}, resp.StatusCode, classifyTransport(err)
	}

	c.logger.DebugContext(ctx, "backend request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	env, err := c.interpret(ctx, req, token, resp.StatusCode, body)
	return env, resp.StatusCode, err
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, string, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if req.Body != nil {
		payload, err := encodeBody(req.Body)
		if err != nil {
			return nil, "", err
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, "", fmt.Errorf("api: build request: %v", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if reader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set(HeaderRequestID, requestID)

	token := req.Token
	if token == "" && !req.NoAuth && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", AuthorizationHeader(token))
	}

	return httpReq, token, nil
}

func (c *Client) interpret(ctx context.Context, req Request, token string, status int, body []byte) (Envelope, error) {
	env, parseErr := ParseEnvelope(body)

	if status == http.StatusUnauthorized || (parseErr == nil && env.Unauthorized()) {
		err := fmt.Errorf("%w: %s %s", ErrAuthenticationExpired, req.Method, req.Path)
		if req.sessionBound() && token != "" && c.onUnauthorized != nil {
			c.onUnauthorized(context.WithoutCancel(ctx), token, err)
		}
		return Envelope{}, err
	}

	if status < 200 || status > 299 {
		be := &BackendError{Status: status, Method: req.Method, Path: req.Path}
		if parseErr == nil {
			be.Code = env.Code
			be.Message = env.Message
		}
		if be.Message == "" {
			be.Message = http.StatusText(status)
		}
		return Envelope{}, be
	}

	if parseErr != nil {
		return Envelope{}, parseErr
	}

	if !env.Success() {
		return Envelope{}, &BackendError{
			Status:  status,
			Code:    env.Code,
			Message: env.Message,
			Method:  req.Method,
			Path:    req.Path,
		}
	}

	return env, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode body: %v", err)
		}
		return payload, nil
	}
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetworkOrTimeout, err)
}
