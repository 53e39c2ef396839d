package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPTransport performs the call in-process with net/http. It mirrors the
// curl exit-code convention: a delivered HTTP error response comes back as
// a Result with a non-zero exit code and the body in Stdout, so the same
// error parsing applies to both transports.
type HTTPTransport struct {
	Client *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// httpErrorExit matches curl's CURLE_HTTP_RETURNED_ERROR.
const httpErrorExit = 22

func NewHTTPTransport() *HTTPTransport {
	// No client timeout here: a request stays active until it finishes or
	// is cancelled through the context.
	return &HTTPTransport{Client: &http.Client{}}
}

func (t *HTTPTransport) Post(ctx context.Context, url string, body []byte) (*Result, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Result{
			Stdout:   data,
			Stderr:   []byte(fmt.Sprintf("http status %d", resp.StatusCode)),
			ExitCode: httpErrorExit,
		}, nil
	}

	return &Result{Stdout: data, ExitCode: 0}, nil
}
