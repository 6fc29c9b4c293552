// Package drawstream records the draw and state operations of a frame and
// turns them into a minimal, ordered command stream for a GPU backend.
//
// # Overview
//
// A drawing façade issues many small calls per frame: set a blend mode,
// bind a texture, add a rectangle. Translating each of them into a real
// graphics API call would emit redundant state changes and tiny draws.
// drawstream sits in between. Every piece of pipeline state lives in its
// own channel that is diffed against the last committed value, and
// consecutive draws under the same state merge into one batch.
//
// # Quick Start
//
//	m := drawstream.NewManager()
//
//	m.PushDraw(6)
//	m.PushColorMul(mgl32.Vec4{1, 0, 0, 1})
//	m.PushDraw(6)
//
//	frame := m.Finish()
//	err := frame.Playback(drawstream.MustBackend("trace"))
//
//	m.Reset() // start the next frame
//
// # State Channels
//
// A channel is either clean or dirty. Pushing the current value is free.
// Pushing the value that was last committed cancels a pending change.
// Any number of pushes between two flushes emit at most one command per
// channel, carrying the final value.
//
// # Frames
//
// Reset rebases every channel to a single history entry and seeds the
// stream with one baseline record per channel, so a backend can rebuild
// the complete pipeline state from the stream alone. Shader, texture and
// mesh bindings reset to unbound; all other state carries forward.
//
// # Backends
//
// A backend implements a single Apply function and is registered by name,
// following the database/sql driver pattern:
//
//	import _ "github.com/gogpu/drawstream/backend/gpustate"
//
//	b, err := drawstream.NewBackend("gpustate")
//
// Available backends:
//   - trace: human readable command log
//   - gpustate: resolves commands into gputypes pipeline descriptors
//   - capture: compressed binary frame capture
//
// # Concurrency
//
// A Manager is single-writer. Recording and replay are separate phases;
// a Frame must not be replayed while its Manager is recording.
package drawstream

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
