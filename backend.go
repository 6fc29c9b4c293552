package drawstream

import "io"

// Backend consumes a recorded frame.
//
// Each backend is reduced to a single Apply function: Playback resolves
// nothing on its behalf, so Apply receives the raw command together with
// the frame it indexes into and calls the typed resolvers it needs.
//
// Backends are created via the registry using NewBackend(name) and
// registered via Register() in their init() functions.
//
// # Implementation Contract
//
// Each backend must:
//  1. Register in init() using drawstream.Register()
//  2. Treat the baseline records at the start of a frame as a full state
//     reload, since it cannot rely on memory of the previous frame
//  3. Ignore command types it does not support rather than fail
//
// # Example Backend Registration
//
//	func init() {
//	    drawstream.Register("trace", func() drawstream.Backend {
//	        return New()
//	    })
//	}
type Backend interface {
	// Begin prepares the backend for replaying f.
	Begin(f *Frame) error

	// Apply executes one command of f.
	Apply(f *Frame, cmd Command) error

	// End finalizes the replayed frame.
	End() error
}

// WriterBackend extends Backend with the ability to write output to an io.Writer.
type WriterBackend interface {
	Backend

	// WriteTo writes the replay output to the given writer.
	// This should only be called after End().
	// Returns the number of bytes written and any error.
	WriteTo(w io.Writer) (int64, error)
}
