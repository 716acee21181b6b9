package port

import (
	"context"
	"time"

	"convert-service/ddd/domain/plan"
)

// MediaMetadata is the result of probing a source file. The duration field is
// optional: engines may not be able to determine it for every container.
type MediaMetadata struct {
	Duration      time.Duration
	DurationKnown bool
}

// EncodeEngine abstracts the external encoding engine. The controller never
// introspects engine state beyond this surface.
type EncodeEngine interface {
	// Execute spawns the engine with the given plan and returns a handle to
	// the running process.
	Execute(ctx context.Context, p plan.EncodePlan) (EngineProcess, error)

	// Probe inspects a source file's metadata.
	Probe(ctx context.Context, inputPath string) (MediaMetadata, error)
}

// EngineProcess is the handle for one running engine invocation. It is
// exclusively owned by a single job session.
type EngineProcess interface {
	// Telemetry delivers elapsed-encoded-time samples at arbitrary cadence.
	// Samples may repeat or arrive out of order; the channel closes when the
	// process stops producing output.
	Telemetry() <-chan time.Duration

	// Done yields exactly one terminal result: nil for a success status,
	// non-nil otherwise.
	Done() <-chan error

	// Terminate signals the process to stop. Safe to call more than once.
	Terminate() error

	// DiagnosticTail returns the captured log tail, valid once Done yielded.
	DiagnosticTail() string
}
