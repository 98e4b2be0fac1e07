package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "todu"
)

// APIError is returned for non-2xx provider responses
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.Status, body)
}

// NotFound reports whether the provider answered 404
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// API is a small JSON-over-HTTP client authenticated with a bearer token
type API struct {
	base *url.URL
	http *http.Client
}

// NewAPI returns a client rooted at baseURL that sends token on every request
func NewAPI(baseURL, token string) (*API, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = defaultTimeout

	return &API{base: u, http: client}, nil
}

// Do sends a request and decodes a JSON response into out (when non-nil)
func (a *API) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := *a.base
	u.Path = a.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Method: method, URL: u.Path, Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, u.Path, err)
	}
	return nil
}

// Get is Do with GET
func (a *API) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return a.Do(ctx, http.MethodGet, path, query, nil, out)
}

// EscapeRepo path-escapes each segment of an "owner/name" repository
func EscapeRepo(repo string) string {
	parts := strings.Split(repo, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
