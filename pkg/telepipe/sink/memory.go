package sink

import (
	"context"
	"sync"

	"github.com/patternlab/telepipe/pkg/telepipe/crash"
	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// Capture records everything it receives. Intended for tests and examples.
type Capture struct {
	mu      sync.Mutex
	events  []event.Event
	reports []CapturedReport
}

// CapturedReport pairs a report with the fatal flag it was sent with.
type CapturedReport struct {
	Report *crash.Report
	Fatal  bool
}

// NewCapture creates an in-memory capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

// SendEvent implements TelemetrySink.
func (c *Capture) SendEvent(_ context.Context, evt event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

// ReportCrash implements crash.Reporter.
func (c *Capture) ReportCrash(_ context.Context, rep *crash.Report, fatal bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, CapturedReport{Report: rep, Fatal: fatal})
	return nil
}

// Events returns a copy of the captured events.
func (c *Capture) Events() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Event(nil), c.events...)
}

// Reports returns a copy of the captured reports.
func (c *Capture) Reports() []CapturedReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CapturedReport(nil), c.reports...)
}

// Reset clears everything captured so far.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
	c.reports = nil
}
