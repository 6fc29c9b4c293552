package drawstream

// Option configures a Manager during creation.
//
// Example:
//
//	// 2D renderer defaults
//	m := drawstream.NewManager()
//
//	// 3D renderer defaults with room for a busy frame
//	m := drawstream.NewManager(
//	    drawstream.WithDefaults(drawstream.Defaults3D()),
//	    drawstream.WithCommandCapacity(4096),
//	)
type Option func(*options)

// options holds optional configuration for Manager creation.
type options struct {
	defaults         Defaults
	commandCapacity  int
	drawCapacity     int
	constantCapacity int
}

// defaultOptions returns the default manager options.
func defaultOptions() options {
	return options{
		defaults:         Defaults2D(),
		commandCapacity:  256,
		drawCapacity:     64,
		constantCapacity: 256,
	}
}

// WithDefaults sets the baseline value of every carry-forward channel.
// Resource-binding channels always start unbound.
func WithDefaults(d Defaults) Option {
	return func(o *options) {
		o.defaults = d
	}
}

// WithCommandCapacity preallocates room for n command records.
// Non-positive values keep the default.
func WithCommandCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.commandCapacity = n
		}
	}
}

// WithDrawCapacity preallocates room for n draw records per category.
// Non-positive values keep the default.
func WithDrawCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.drawCapacity = n
		}
	}
}

// WithConstantCapacity preallocates room for n constant vectors.
// Non-positive values keep the default.
func WithConstantCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.constantCapacity = n
		}
	}
}
