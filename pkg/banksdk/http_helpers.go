package banksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// getJSON and postJSON run one call that must answer 200 and decode its
// body as T.
func getJSON[T any](ctx context.Context, c *SDKClient, path string) (*T, error) {
	return roundTrip[T](ctx, c, http.MethodGet, path, nil)
}

func postJSON[T any](ctx context.Context, c *SDKClient, path string, body any) (*T, error) {
	return roundTrip[T](ctx, c, http.MethodPost, path, body)
}

func roundTrip[T any](ctx context.Context, c *SDKClient, method, path string, body any) (*T, error) {
	out := new(T)
	if err := c.exchange(ctx, method, path, body, http.StatusOK, out); err != nil {
		return nil, err
	}
	return out, nil
}

// exchange sends body (JSON, when non-nil) through the client's cookie jar
// and expects status want. Any other status becomes an *APIError. The
// response is decoded into out unless out is nil.
func (c *SDKClient) exchange(ctx context.Context, method, path string, body any, want int, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("banksdk: encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return fmt.Errorf("banksdk: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("banksdk: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("banksdk: read %s %s: %w", method, path, err)
	}
	if resp.StatusCode != want {
		return parseErrorResponse(resp, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("banksdk: decode %s %s: %w", method, path, err)
	}
	return nil
}
