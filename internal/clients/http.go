// Package clients holds thin HTTP clients for the external collaborators:
// the price API, the limit-order book, and the chain RPC node. Transient
// failures (transport errors, 429, 5xx) are retried with backoff; other
// error statuses fail fast.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/solpnl/pkg/retrier"
)

const defaultTimeout = 15 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func doJSON(ctx context.Context, client *http.Client, r *retrier.Retrier, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
	}

	return r.Do(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return retrier.Unrecoverable(errors.Wrap(err, "build request"))
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return errors.Wrap(err, "request failed")
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "read response body")
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return errors.Errorf("status %d from %s", resp.StatusCode, url)
		}
		if resp.StatusCode != http.StatusOK {
			return retrier.Unrecoverable(errors.Errorf("status %d from %s: %s", resp.StatusCode, url, data))
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return retrier.Unrecoverable(errors.Wrap(err, "decode response"))
		}
		return nil
	})
}
