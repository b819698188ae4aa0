// Package client talks to the gateway's admin book-request endpoints and keeps
// an optimistic local copy of the pending list.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"library-gateway/internal/domains/request/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// NewHTTPClient returns a pooled client with conservative timeouts.
func NewHTTPClient() *http.Client {
	tr := &http.Transport{
		MaxIdleConns:          20,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       30 * time.Second,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: tr,
	}
}

// Client calls the gateway REST API rooted at BaseURL (e.g. http://localhost:8001/api/v1).
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client. A nil httpClient uses NewHTTPClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// PendingRequests fetches the joined admin view of PENDING requests.
func (c *Client) PendingRequests(ctx context.Context) ([]model.AdminRequestView, error) {
	var out []model.AdminRequestView
	if err := c.do(ctx, http.MethodGet, "/admin/book-requests", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.AdminRequestView{}
	}
	return out, nil
}

// Approve approves a request and returns the gateway's message.
func (c *Client) Approve(ctx context.Context, requestID int64) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/admin/book-requests/%d/approve", requestID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Reject rejects a request with optional notes and returns the gateway's message.
func (c *Client) Reject(ctx context.Context, requestID int64, notes string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/admin/book-requests/%d/reject", requestID)
	if err := c.do(ctx, http.MethodPost, path, model.RejectRequest{Notes: notes}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
