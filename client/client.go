// Package client is a Go SDK for the EcoFinds API. It keeps the signed-in
// session in a SessionStore and mirrors server state (cart, feed, listings)
// for a UI to render.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ErrNotLoggedIn is returned, without contacting the server, by calls that need a session.
var ErrNotLoggedIn = errors.New("please login")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// ValidationError is a form rejected locally; no request was sent.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return (&APIError{Status: 0, Message: "validation failed", Fields: e.Fields}).Error()
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Store   SessionStore

	// OnUnauthorized runs after a 401 cleared the stored session.
	OnUnauthorized func()
}

func New(baseURL string, store SessionStore) *Client {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Store:   store,
	}
}

// Session returns the stored session, or nil when signed out.
func (c *Client) Session() *Session {
	s, err := c.Store.Load()
	if err != nil || s == nil || s.Token == "" {
		return nil
	}
	return s
}

func (c *Client) LoggedIn() bool { return c.Session() != nil }

func (c *Client) token() string {
	if s := c.Session(); s != nil {
		return s.Token
	}
	return ""
}

// authed fails fast when there is no session.
func (c *Client) authed(action string) error {
	if c.token() == "" {
		return fmt.Errorf("%w to %s", ErrNotLoggedIn, action)
	}
	return nil
}

type errorBody struct {
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
	Details string            `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		if err := c.Store.Clear(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			if eb.Error != "" {
				apiErr.Message = eb.Error
			}
			if eb.Details != "" {
				apiErr.Message += ": " + eb.Details
			}
			apiErr.Fields = eb.Errors
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type envelope[T any] struct {
	Data T `json:"data"`
}
