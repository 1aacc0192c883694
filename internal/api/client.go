// Package api is the typed HTTP client for the Exohunt backend.
// It wraps net/http with JSON/multipart encoding, bearer-token injection,
// and a single refresh-and-retry pass on 401 responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies bearer tokens to the client. AccessToken returns the
// current token, or "" when no session is active. Refresh attempts to renew
// the tokens and reports whether a retry with a fresh token is worthwhile.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) (bool, error)
}

// Error is returned for any non-2xx response that survives the auth retry.
// Body holds the best-effort parsed response body (JSON value, raw text, or
// nil); Detail is the human-readable message extracted from it, if any.
type Error struct {
	Status int
	Body   any
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// IsStatus reports whether err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == status
}

// Multipart is a pre-encoded multipart/form-data payload. The raw bytes are
// retained so the request can be replayed after a token refresh.
type Multipart struct {
	ContentType string
	Data        []byte
}

// RequestOptions controls a single request. Zero value means GET with no
// body, no query, and the normal auth retry behavior.
type RequestOptions struct {
	Method string
	Body   any        // JSON-encoded unless nil
	Form   *Multipart // multipart payload; takes precedence over Body
	Query  Query
	Header http.Header
	// SkipAuthRetry disables the refresh-and-retry pass on 401. Used by the
	// login and refresh endpoints themselves to prevent recursion.
	SkipAuthRetry bool
}

// Query holds query-string parameters. Nil values are omitted entirely,
// matching the backend's treatment of absent parameters.
type Query map[string]any

func (q Query) encode() string {
	if len(q) == 0 {
		return ""
	}
	values := url.Values{}
	for key, val := range q {
		if val == nil {
			continue
		}
		values.Set(key, fmt.Sprint(val))
	}
	return values.Encode()
}

// Client issues requests against a single Exohunt API base URL. The token
// source is injected at construction; a nil source produces anonymous
// requests with no retry pass.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// New returns a Client for the given base URL. A trailing slash on baseURL
// is ignored. httpClient may be nil, in which case a client with a 30s
// timeout is used.
func New(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Do performs one API request. On success the response body is decoded into
// out: JSON responses are unmarshalled, plain-text responses require out to
// be a *string, and 204 leaves out untouched. out may be nil.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + ensureLeadingSlash(path)
	if qs := opts.Query.encode(); qs != "" {
		target += "?" + qs
	}

	body, contentType, err := encodeBody(opts)
	if err != nil {
		return err
	}

	// The retry reuses the same request ID so the backend can correlate
	// both attempts.
	requestID := uuid.NewString()

	attempt := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		for key, vals := range opts.Header {
			for _, v := range vals {
				req.Header.Add(key, v)
			}
		}
		if contentType != "" && req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("X-Request-ID", requestID)
		if c.tokens != nil {
			if tok := c.tokens.AccessToken(); tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
		}
		return c.http.Do(req)
	}

	res, err := attempt()
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}

	if res.StatusCode == http.StatusUnauthorized && !opts.SkipAuthRetry && c.tokens != nil {
		drain(res)
		refreshed, err := c.tokens.Refresh(ctx)
		if err != nil {
			return err
		}
		if !refreshed {
			return &Error{Status: http.StatusUnauthorized}
		}
		res, err = attempt()
		if err != nil {
			return fmt.Errorf("request %s %s (retry): %w", method, path, err)
		}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errorFromResponse(res)
	}

	if res.StatusCode == http.StatusNoContent || out == nil {
		drainBody(res.Body)
		return nil
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if isJSON(res.Header.Get("Content-Type")) {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}
	return fmt.Errorf("unexpected non-JSON response for %s %s", method, path)
}

func encodeBody(opts RequestOptions) (data []byte, contentType string, err error) {
	switch {
	case opts.Form != nil:
		return opts.Form.Data, opts.Form.ContentType, nil
	case opts.Body != nil:
		data, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return data, "application/json", nil
	default:
		return nil, "", nil
	}
}

// errorFromResponse builds an *Error from a non-2xx response, parsing the
// body as JSON, falling back to text, falling back to nil.
func errorFromResponse(res *http.Response) error {
	apiErr := &Error{Status: res.StatusCode}

	data, err := io.ReadAll(res.Body)
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var parsed any
	if json.Unmarshal(data, &parsed) == nil {
		apiErr.Body = parsed
		apiErr.Detail = extractDetail(parsed)
	} else {
		apiErr.Body = string(data)
	}
	return apiErr
}

// extractDetail pulls a human message out of the backend error envelope:
// a "detail" field holding either a string or a validation-error array
// whose entries carry a "msg".
func extractDetail(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	switch detail := obj["detail"].(type) {
	case string:
		return detail
	case []any:
		if len(detail) == 0 {
			return ""
		}
		if entry, ok := detail[0].(map[string]any); ok {
			if msg, ok := entry["msg"].(string); ok {
				return msg
			}
		}
	}
	return ""
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

func drain(res *http.Response) {
	drainBody(res.Body)
	res.Body.Close()
}

func drainBody(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 1<<20))
}
