package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/askline/askline/internal/logx"
)

// CurlTransport shells out to curl for the HTTP call, keeping the request
// out of process so cancellation is a plain kill. --fail-with-body makes
// curl exit non-zero on HTTP errors while still delivering the body, which
// is what the error parser wants.
type CurlTransport struct {
	// Binary overrides the curl executable, mainly for tests.
	Binary string
}

var _ Transport = (*CurlTransport)(nil)

func NewCurlTransport() *CurlTransport {
	return &CurlTransport{Binary: "curl"}
}

func (t *CurlTransport) Post(ctx context.Context, url string, body []byte) (*Result, error) {
	bin := t.Binary
	if bin == "" {
		bin = "curl"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-sS",
		"--fail-with-body",
		"-X", "POST",
		"-H", "Content-Type: application/json",
		"--data-binary", "@-",
		url,
	)
	cmd.Stdin = bytes.NewReader(body)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	tm := logx.Start("", "Transport", "curl "+url)
	err := cmd.Run()
	tm.End()

	// A kill from our side shows up both as a non-nil ctx error and as a
	// signal exit; report the ctx error so the caller sees a cancellation,
	// not a transport failure.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return &Result{
				Stdout:   stdout.Bytes(),
				Stderr:   stderr.Bytes(),
				ExitCode: ee.ExitCode(),
			}, nil
		}
		return nil, fmt.Errorf("exec %s: %w", bin, err)
	}

	return &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: 0,
	}, nil
}
