package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient returns an http.Client with an optional proxy.
func NewHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// get performs a GET and maps transport failures and status codes onto the
// error kinds. The request URL is kept out of errors since it carries the API key.
func get(ctx context.Context, client *http.Client, name, endpoint string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, wrapError(name, ErrUpstream, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, wrapError(name, ErrUpstream, fmt.Errorf("request failed: %w", stripURL(err)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(name, ErrUpstream, fmt.Errorf("read body: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, newError(name, ErrRateLimited, resp.StatusCode, "")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, newError(name, ErrUpstream, resp.StatusCode, "%s", truncate(string(body), 200))
	}
	return body, nil
}

func stripURL(err error) error {
	if uerr, ok := err.(*url.Error); ok {
		return uerr.Err
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
