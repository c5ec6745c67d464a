// Package telepipe is a typed analytics and crash-reporting pipeline.
//
// Events are immutable values carrying a name, a category, and a
// parameter map. Each category owns a processing strategy that
// validates, sanitizes, and enriches events before they fan out to
// subscribed observers and forward to the telemetry backend. Crash
// reports route through an ordered handler chain where exactly one
// handler claims each report.
//
// Publish and Handle never fail from the caller's perspective: a bad
// event passes through unenriched with a warning, a failing backend is
// logged and optionally spooled for resend, and a panicking observer
// never disturbs its peers.
//
// Basic usage:
//
//	pipe, err := telepipe.New(
//		telepipe.WithTelemetrySink(mySink),
//		telepipe.WithReporter(myReporter),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pipe.Close()
//
//	evt, err := event.NewFrom("pattern_completed", event.PatternLearningPayload{
//		PatternName:      "observer",
//		PatternCategory:  "behavioral",
//		Completed:        true,
//		TimeSpentSeconds: 420,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	pipe.Publish(ctx, evt)
//
// Crash reporting routes through the chain the same way:
//
//	pipe.Capture(ctx, err,
//		crash.WithSeverity(crash.SeverityCritical),
//		crash.WithCategory(crash.CategoryGameLogic),
//	)
//
// Subpackages hold the building blocks: event (model and payloads),
// strategy (per-category processing), bus (observer fan-out), crash
// (reports, handlers, chain), sink (outbound collaborators), spool
// (failed-send buffering), config (file-loadable settings), and
// observability (logging, metrics, tracing helpers).
package telepipe
