// Package apiclient is the Go client for the backend API. Outgoing payloads
// have their timestamp fields converted from the caller's local zone to UTC
// and responses are converted back, so callers only deal in local time.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cleo_backend/internal/datetransform"
	"cleo_backend/internal/logger"

	"github.com/codeGROOVE-dev/retry"
	"github.com/tidwall/gjson"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
	maxDelay        = 5 * time.Second
)

// ErrUnauthorized is returned for 401 responses; the caller should sign in again.
var ErrUnauthorized = errors.New("apiclient: unauthorized")

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: %d %s", e.Status, e.Message)
}

// Client talks to the API on behalf of one user.
type Client struct {
	base     *url.URL
	http     *http.Client
	log      *logger.Logger
	tf       *datetransform.Transformer
	matcher  datetransform.Matcher
	tz       string
	loc      *time.Location
	attempts uint
	delay    time.Duration

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimezone pins the caller's zone instead of resolving it from the runtime.
func WithTimezone(tz string) Option {
	return func(c *Client) { c.tz = tz }
}

// WithMatcher selects which payload keys are timestamps.
func WithMatcher(m datetransform.Matcher) Option {
	return func(c *Client) { c.matcher = m }
}

// WithRetry sets how often idempotent GETs are attempted and the base backoff.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay > 0 {
			c.delay = delay
		}
	}
}

// New builds a client for baseURL. The runtime timezone is resolved once here.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", baseURL)
	}
	c := &Client{
		base:     base,
		http:     &http.Client{Timeout: defaultTimeout},
		log:      logger.Nop(),
		attempts: defaultAttempts,
		delay:    defaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tz == "" {
		c.tz = datetransform.ResolveTimezone()
	}
	c.loc = datetransform.LoadLocation(c.tz)
	c.tf = datetransform.New(c.log, datetransform.WithMatcher(c.matcher))
	return c, nil
}

// Timezone reports the zone used for conversions.
func (c *Client) Timezone() string { return c.tz }

// SetToken replaces the bearer token, e.g. after sign-in.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do sends one request and decodes the JSON response into out (which may be
// nil). Timestamp fields in body and query are converted to UTC; those in
// the response are converted to the client's zone. GETs are retried on
// transport errors and 5xx responses.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	payload, contentType, err := c.encodeBody(body)
	if err != nil {
		return err
	}
	target := c.resolve(path, c.transformQuery(query))

	attempts := uint(1)
	if method == http.MethodGet {
		attempts = c.attempts
	}

	var (
		raw     []byte
		lastErr error
	)
	err = retry.Do(
		func() error {
			raw, lastErr = c.roundTrip(ctx, method, target, payload, contentType)
			var se *StatusError
			switch {
			case lastErr == nil:
				return nil
			case errors.Is(lastErr, ErrUnauthorized):
				return retry.Unrecoverable(lastErr)
			case errors.As(lastErr, &se) && se.Status < http.StatusInternalServerError:
				return retry.Unrecoverable(lastErr)
			}
			return lastErr
		},
		retry.Attempts(attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warnw("api_request_retry", "method", method, "path", path, "attempt", n+1, "err", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return c.decode(raw, out)
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) roundTrip(ctx context.Context, method, target string, payload []byte, contentType string) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: read body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(resp.StatusCode, raw)
	}
	return raw, nil
}

// statusError pulls the message out of an error body, accepting both
// {"error": ...} and {"message": ...}.
func statusError(status int, raw []byte) *StatusError {
	e := &StatusError{Status: status, Message: http.StatusText(status)}
	if !gjson.ValidBytes(raw) {
		return e
	}
	res := gjson.ParseBytes(raw)
	if msg := res.Get("error"); msg.Type == gjson.String && msg.String() != "" {
		e.Message = msg.String()
	} else if msg := res.Get("message"); msg.Exists() && msg.String() != "" {
		e.Message = msg.String()
	}
	e.Code = res.Get("code").String()
	return e
}

// encodeBody returns the bytes to send. Binary bodies pass through unchanged;
// everything else is JSON with timestamp fields converted to UTC.
func (c *Client) encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case json.RawMessage:
		return b, "application/json", nil
	case []byte:
		return b, "application/octet-stream", nil
	case *multipart.FileHeader:
		f, err := b.Open()
		if err != nil {
			return nil, "", fmt.Errorf("apiclient: open upload: %w", err)
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", fmt.Errorf("apiclient: read upload: %w", err)
		}
		ct := b.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		return data, ct, nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, "", fmt.Errorf("apiclient: read body: %w", err)
		}
		return data, "application/octet-stream", nil
	}

	data, err := c.toGeneric(body)
	if err != nil {
		return nil, "", err
	}
	out, err := json.Marshal(c.tf.Request(data, c.tz))
	if err != nil {
		return nil, "", fmt.Errorf("apiclient: encode body: %w", err)
	}
	return out, "application/json", nil
}

// toGeneric turns body into the map/slice form the transformer walks.
// Maps and slices are walked as given so nested binary values survive.
func (c *Client) toGeneric(body any) (any, error) {
	switch body.(type) {
	case map[string]any, []any, []map[string]any:
		return body, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode body: %w", err)
	}
	var data any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("apiclient: encode body: %w", err)
	}
	return data, nil
}

// transformQuery converts timestamp-named query parameters to UTC.
func (c *Client) transformQuery(q url.Values) url.Values {
	if len(q) == 0 {
		return nil
	}
	out := make(url.Values, len(q))
	for k, vs := range q {
		for _, v := range vs {
			conv, _ := c.tf.Request(map[string]any{k: v}, c.tz).(map[string]any)
			out.Add(k, fmt.Sprint(conv[k]))
		}
	}
	return out
}

func (c *Client) decode(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var data any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	local := c.tf.Response(data, c.loc)

	if p, ok := out.(*any); ok {
		*p = local
		return nil
	}
	buf, err := json.Marshal(local)
	if err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}
