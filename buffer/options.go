package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*config)

// config collects construction-time settings fed to the tree builder.
type config struct {
	defaultEOL LineEnding
	normalize  bool
	force      bool
}

// WithEOL sets the default line ending used when the content has no
// terminators of its own (or when forced).
func WithEOL(le LineEnding) Option {
	return func(c *config) {
		c.defaultEOL = le
	}
}

// WithLF configures the buffer to default to Unix line endings (\n).
func WithLF() Option {
	return WithEOL(LineEndingLF)
}

// WithCRLF configures the buffer to default to Windows line endings (\r\n).
func WithCRLF() Option {
	return WithEOL(LineEndingCRLF)
}

// WithNormalizeEOL rewrites all line terminators to the chosen style
// during construction.
func WithNormalizeEOL() Option {
	return func(c *config) {
		c.normalize = true
	}
}

// WithForcedEOL ignores the content's own terminator statistics and uses
// the given style outright. Usually combined with WithNormalizeEOL.
func WithForcedEOL(le LineEnding) Option {
	return func(c *config) {
		c.defaultEOL = le
		c.force = true
	}
}
