// Package api provides the request gateway: the sole HTTP entry point used by
// feature code. It attaches the current access token to every outbound request
// and classifies every inbound response; feature code never checks for 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/curioplatform/curio-cli/internal/models"
	"github.com/curioplatform/curio-cli/internal/observability"
	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/session"
	"github.com/curioplatform/curio-cli/internal/version"
)

// Refresher is the refresh coordinator as the gateway sees it.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Client is the gateway to the Curio API.
type Client struct {
	httpClient *http.Client
	base       string
	tokens     session.TokenStore
	refresher  Refresher

	metrics *observability.Collector
	trace   *observability.TraceWriter
}

// Response wraps an API response.
type Response struct {
	Data       json.RawMessage
	StatusCode int
	Headers    http.Header
}

// UnmarshalData unmarshals the response data into the given value.
func (r *Response) UnmarshalData(v any) error {
	return json.Unmarshal(r.Data, v)
}

// Config wires a Client.
type Config struct {
	HTTPClient *http.Client // must carry the cookie jar
	BaseURL    string
	Tokens     session.TokenStore
	Refresher  Refresher
	Metrics    *observability.Collector
	Trace      *observability.TraceWriter
}

// NewClient creates a gateway client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		base:       strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:     cfg.Tokens,
		refresher:  cfg.Refresher,
		metrics:    cfg.Metrics,
		trace:      cfg.Trace,
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodDelete, path, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		payload = b
	}

	resp, err := c.send(ctx, method, path, payload, false)
	if err == nil || !isUnauthorized(err) {
		return resp, err
	}

	// First 401: hand off to the coordinator, then replay the original
	// request exactly once with the new token.
	if _, rerr := c.refresher.Refresh(ctx); rerr != nil {
		// The coordinator already drove teardown (and navigation, if the
		// route warranted it); feature code gets the authoritative signal.
		if output.AsError(rerr).Code == output.CodeNetwork {
			return nil, rerr
		}
		return nil, output.ErrSessionEnded()
	}

	resp, err = c.send(ctx, method, path, payload, true)
	if isUnauthorized(err) {
		// Second 401 in a row: final, never retried a third time.
		return nil, output.ErrAuth("Authentication failed")
	}
	return resp, err
}

// send issues one HTTP attempt and classifies the response.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, replay bool) (*Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: propagated to the caller, never conflated with
		// a 401 and never a refresh trigger.
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	c.metrics.RecordRequest(time.Since(start), replay)
	c.trace.Request(method, path, resp.StatusCode, time.Since(start))

	// Any 2xx/3xx passes through unchanged; redirects the transport did not
	// follow (e.g. 304) still surface their status to the caller.
	if resp.StatusCode < 400 {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return &Response{
			Data:       respBody,
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
		}, nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, errUnauthorized

	case http.StatusForbidden:
		return nil, output.ErrForbidden("Access denied")

	case http.StatusNotFound:
		return nil, output.ErrNotFound("Resource", path)

	case http.StatusTooManyRequests:
		return nil, output.ErrRateLimit(parseRetryAfter(resp.Header.Get("Retry-After")))

	default:
		respBody, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			msg := apiErr.Error
			if msg == "" {
				msg = apiErr.Message
			}
			if msg != "" {
				return nil, output.ErrAPI(resp.StatusCode, msg)
			}
		}
		return nil, output.ErrAPI(resp.StatusCode, fmt.Sprintf("Request failed (HTTP %d)", resp.StatusCode))
	}
}

// errUnauthorized is internal to the gateway; it never escapes doRequest.
var errUnauthorized = &output.Error{Code: output.CodeAuth, Message: "unauthorized", HTTPStatus: 401}

func isUnauthorized(err error) bool {
	return err == errUnauthorized
}

// parseRetryAfter parses the Retry-After header value.
func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return seconds
	}
	return 0
}

// Probe returns a session.Probe that fetches the current identity without
// any 401 retry; the bootstrapper owns what happens after a failed probe.
func (c *Client) Probe() session.Probe {
	return &identityProbe{client: c}
}

type identityProbe struct {
	client *Client
}

func (p *identityProbe) Me(ctx context.Context) (*models.User, error) {
	resp, err := p.client.send(ctx, http.MethodGet, "/users/me", nil, false)
	if err != nil {
		if isUnauthorized(err) {
			return nil, output.ErrAuth("identity check rejected")
		}
		return nil, err
	}

	var user models.User
	if err := resp.UnmarshalData(&user); err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}
	return &user, nil
}

// Me fetches the current identity through the full gateway path (with refresh).
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	resp, err := c.Get(ctx, "/users/me")
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := resp.UnmarshalData(&user); err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}
	return &user, nil
}
