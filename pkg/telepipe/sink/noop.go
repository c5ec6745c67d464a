package sink

import (
	"context"

	"github.com/patternlab/telepipe/pkg/telepipe/crash"
	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// Noop discards everything. It is the default collaborator when a
// pipeline is built without explicit sinks.
type Noop struct{}

// SendEvent implements TelemetrySink.
func (Noop) SendEvent(context.Context, event.Event) error { return nil }

// ReportCrash implements crash.Reporter.
func (Noop) ReportCrash(context.Context, *crash.Report, bool) error { return nil }
