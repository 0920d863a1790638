// internal/adapters/hbnbapi/client.go
package hbnbapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hbnb_web/internal/adapters/observability"
	"hbnb_web/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int, timeout time.Duration) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if rps <= 0 {
		rps = 20
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

func (c *Client) ListPlaces(ctx context.Context, token string) ([]map[string]any, error) {
	var raw any
	if err := c.get(ctx, "/places", "/places", token, &raw); err != nil {
		return nil, err
	}
	return unwrapList(raw), nil
}

func (c *Client) GetPlace(ctx context.Context, id, token string) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/places/"+url.PathEscape(id), "/places/{id}", token, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// Login returns the access token; "" when the API answered ok without one.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", "", body, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, r domain.Registration) error {
	body := map[string]string{
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"email":      r.Email,
		"password":   r.Password,
	}
	return c.post(ctx, "/auth/register", "", body, nil)
}

// SubmitReview tries the nested route first and falls back to the flat
// /reviews collection used by older backends.
func (c *Client) SubmitReview(ctx context.Context, token string, d domain.ReviewDraft) error {
	nested := map[string]any{"text": d.Text, "rating": d.Rating}
	err := c.post(ctx, "/places/"+url.PathEscape(d.PlaceID)+"/reviews", token, nested, nil)
	if !routeMissing(err) {
		return err
	}
	flat := map[string]any{
		"text":     d.Text,
		"content":  d.Text,
		"rating":   d.Rating,
		"place_id": d.PlaceID,
	}
	if d.UserID != "" {
		flat["user_id"] = d.UserID
	}
	return c.post(ctx, "/reviews", token, flat, nil)
}

// ---- Internals ----

func routeMissing(err error) bool {
	var ae *domain.APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Status == http.StatusNotFound || ae.Status == http.StatusMethodNotAllowed
}

// unwrapList accepts a bare array or an envelope such as {"places": [...]}.
func unwrapList(raw any) []map[string]any {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, k := range []string{"places", "items", "data", "results"} {
			if arr, ok := v[k].([]any); ok {
				items = arr
				break
			}
		}
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body []byte) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hbnb-web/1.0")
	return req, nil
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, path, endpoint, token string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := c.newRequest(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("hbnb_api", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("hbnb_api", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s: %w", endpoint, err)
			}
			return nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			lastErr = apiError(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return apiError(resp)
		}
	}

	return lastErr
}

// post sends one JSON request; writes are not retried.
func (c *Client) post(ctx context.Context, path, token string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, token, b)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("hbnb_api", endpointLabel(path), 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	observability.ObserveExternal("hbnb_api", endpointLabel(path), resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	defer resp.Body.Close()
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// endpointLabel keeps place ids out of metric labels.
func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/places/") && strings.HasSuffix(path, "/reviews") {
		return "/places/{id}/reviews"
	}
	return path
}

// apiError reads a small error body and closes it.
func apiError(resp *http.Response) *domain.APIError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	e := &domain.APIError{
		Status:     resp.StatusCode,
		StatusText: strings.ToUpper(http.StatusText(resp.StatusCode)),
	}
	var body map[string]any
	if json.Unmarshal(b, &body) == nil {
		for _, k := range []string{"error", "message"} {
			if s, ok := body[k].(string); ok && strings.TrimSpace(s) != "" {
				e.Message = strings.TrimSpace(s)
				break
			}
		}
	}
	return e
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 100ms, 200ms, 400ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
