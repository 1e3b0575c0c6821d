package pix

// Option configures a Decode, Encode or Process call.
// Use functional options to customize behavior per call.
//
// Example:
//
//	img, err := pix.Decode(r, pix.WithFormats("gif", "png"))
//	out, err := pix.Process(img, "resize", params,
//	    pix.WithWorkers(4),
//	    pix.WithProgress(func(done, total int) { bar.Set(done, total) }),
//	)
type Option func(*config)

// config holds the resolved per-call configuration.
type config struct {
	registry  *Registry
	formats   []string
	format    string
	workers   int
	progress  []func(done, total int)
	cancelled func() bool
	maxWidth  int
	maxHeight int
}

// defaultConfig returns the configuration used when no options are given.
func defaultConfig() config {
	return config{
		registry:  &defaultRegistry,
		workers:   0, // 0 means GOMAXPROCS
		maxWidth:  defaultMaxDimension,
		maxHeight: defaultMaxDimension,
	}
}

// defaultMaxDimension bounds resize targets unless overridden.
const defaultMaxDimension = 16384

// WithRegistry makes the call use a specific format registry instead of
// the package default. Useful for tests and embedders with their own
// format sets.
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithFormats restricts format detection to the named formats, in
// registry order. Detection fails if none of them match.
func WithFormats(names ...string) Option {
	return func(c *config) {
		c.formats = names
	}
}

// WithFormat names the format an Encode call writes, overriding the
// image's detected format.
func WithFormat(name string) Option {
	return func(c *config) {
		c.format = name
	}
}

// WithWorkers sets the number of row-parallel workers.
// Zero or negative selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithProgress registers a callback invoked as rows complete. done is a
// monotonically non-decreasing count of completed target rows out of
// total; it never regresses and never exceeds total. Callbacks may be
// invoked from worker goroutines.
func WithProgress(fn func(done, total int)) Option {
	return func(c *config) {
		if fn != nil {
			c.progress = append(c.progress, fn)
		}
	}
}

// WithCancel supplies a cooperative cancellation flag. Processors check
// it between row chunks and abandon remaining work when it reports true;
// the source image is left untouched.
func WithCancel(cancelled func() bool) Option {
	return func(c *config) {
		c.cancelled = cancelled
	}
}

// WithMaxDimensions bounds the target size accepted by the resize
// processor. Zero or negative values keep the defaults.
func WithMaxDimensions(width, height int) Option {
	return func(c *config) {
		if width > 0 {
			c.maxWidth = width
		}
		if height > 0 {
			c.maxHeight = height
		}
	}
}

// apply resolves options against the defaults.
func apply(opts []Option) config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
