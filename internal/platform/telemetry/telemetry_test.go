package telemetry_test

import (
	"context"
	"testing"

	"yuki/internal/platform/telemetry"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	t.Parallel()
	shutdown, err := telemetry.Setup(context.Background(), "yuki", "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}
