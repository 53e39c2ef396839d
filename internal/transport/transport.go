package transport

import "context"

// Result is the raw outcome of one outbound call, modeled on a subprocess:
// captured stdout/stderr plus an exit code. ExitCode 0 means the body in
// Stdout is the provider's success shape; anything else carries an error
// body or transport diagnostics. ExitCode -1 means the call was killed.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Killed reports whether the underlying call died from a kill signal
// rather than finishing on its own.
func (r *Result) Killed() bool {
	return r.ExitCode == -1
}

// Transport performs a single JSON POST against an inference endpoint.
// Cancelling the context must abort the call; a cancelled call returns
// ctx's error, never a fabricated Result.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) (*Result, error)
}
