package runtime

import (
	"context"
	"testing"
)

// The Runtime type is a simple data holder; this test ensures
// its fields can be set and read as expected.
type fakePinger struct{}

func (f *fakePinger) Ping(ctx context.Context) error { return nil }

func TestRuntimeFields(t *testing.T) {
	rt := &Runtime{ConfigLoaded: true, Pinger: &fakePinger{}}

	if !rt.ConfigLoaded {
		t.Fatalf("ConfigLoaded should be true")
	}
	if rt.Pinger == nil {
		t.Fatalf("Pinger should not be nil")
	}
	if err := rt.Pinger.Ping(context.Background()); err != nil {
		t.Fatalf("Ping should succeed: %v", err)
	}
}
