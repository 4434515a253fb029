package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// maxErrorBody caps how much of a vendor error body ends up in messages.
const maxErrorBody = 512

// vendorError non-2xx ответ вендора
type vendorError struct {
	Status int
	Body   string
}

func (e *vendorError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("vendor api error %d", e.Status)
	}
	return fmt.Sprintf("vendor api error %d: %s", e.Status, e.Body)
}

// vendorClient JSON-клиент для API вендора: базовый URL, заголовки авторизации, таймаут из http.Client
type vendorClient struct {
	baseURL string
	headers http.Header
	http    *http.Client
}

func newVendorClient(baseURL string, httpClient *http.Client) *vendorClient {
	return &vendorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(http.Header),
		http:    httpClient,
	}
}

func (c *vendorClient) setHeader(key, value string) {
	c.headers.Set(key, value)
}

// with returns a copy carrying extra headers; the receiver is left untouched.
func (c *vendorClient) with(key, value string) *vendorClient {
	cp := *c
	cp.headers = c.headers.Clone()
	cp.headers.Set(key, value)
	return &cp
}

func (c *vendorClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *vendorClient) postJSON(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *vendorClient) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &vendorError{Status: resp.StatusCode, Body: truncateBody(strings.TrimSpace(string(raw)), maxErrorBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// truncateBody cuts s to at most n bytes without splitting a rune.
func truncateBody(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
