// Package sink defines the outbound collaborators of the pipeline and
// ships log-backed, no-op, and in-memory implementations.
//
// The pipeline never depends on a backend's wire format; it only requires
// these coarse operations and that failures surface as recoverable errors,
// never as process-terminating faults.
package sink

import (
	"context"

	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// TelemetrySink accepts a processed event for ingestion by a telemetry
// backend.
type TelemetrySink interface {
	SendEvent(ctx context.Context, evt event.Event) error
}

// TelemetrySinkFunc adapts a function to the TelemetrySink interface.
type TelemetrySinkFunc func(ctx context.Context, evt event.Event) error

// SendEvent implements TelemetrySink.
func (f TelemetrySinkFunc) SendEvent(ctx context.Context, evt event.Event) error {
	return f(ctx, evt)
}
