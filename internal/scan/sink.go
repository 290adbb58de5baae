package scan

// Sink receives progress snapshots pushed by running scans. The core never
// depends on a transport; the CLI and TUI own the translation.
type Sink[P any] interface {
	Publish(event string, snapshot P)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc[P any] func(event string, snapshot P)

func (f SinkFunc[P]) Publish(event string, snapshot P) { f(event, snapshot) }

// NopSink discards all snapshots.
type NopSink[P any] struct{}

func (NopSink[P]) Publish(string, P) {}
