package runtime

import (
	"context"

	"github.com/askline/askline/internal/coordinator"
)

// EndpointPinger checks reachability of the configured inference endpoint.
type EndpointPinger interface {
	Ping(ctx context.Context) error
}

// Runtime is the shared handle the health endpoints inspect.
type Runtime struct {
	ConfigLoaded bool
	Coordinator  *coordinator.Coordinator
	Pinger       EndpointPinger
}
