package trackjs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// captureURL builds the capture endpoint URL for the bound account.
func (r *Reporter) captureURL() string {
	params := url.Values{}
	params.Set("token", r.creds.Token)
	params.Set("v", AgentVersion)
	return fmt.Sprintf("%s?%s", r.baseURL, params.Encode())
}

// post performs a single capture POST and maps the outcome onto the error
// taxonomy: nil for any 2xx, HTTPStatusError for other statuses, and
// TransportError when no response arrived at all.
func (r *Reporter) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.captureURL(), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building capture request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	// The service answers 200 or 202 with an empty body on acceptance;
	// drain it so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPStatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

func classifyTransportError(err error) *TransportError {
	kind := TransportNetwork
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		kind = TransportTimeout
	}
	return &TransportError{Kind: kind, Err: err}
}

// send runs post under the rate-limit retry policy: only 429 responses are
// retried, on a fixed delay, up to the configured attempt budget. Every
// other failure propagates immediately, and context cancellation aborts
// the sequence mid-delay.
func (r *Reporter) send(ctx context.Context, body []byte) error {
	var attempts int
	var lastErr error
	err := utility.Retry(ctx, func() (bool, error) {
		attempts++
		err := r.post(ctx, body)
		if err == nil {
			return false, nil
		}
		lastErr = err
		if !IsRateLimited(err) {
			return false, err
		}
		grip.Debug(message.Fields{
			"message":      "capture request rate limited",
			"attempt":      attempts,
			"max_attempts": r.retry.MaxAttempts,
		})
		return true, err
	}, r.retry)
	if err == nil {
		return nil
	}
	if IsRateLimited(lastErr) && attempts >= r.retry.MaxAttempts {
		return &RetriesExhaustedError{Attempts: attempts, Last: lastErr}
	}
	return err
}
