package packer

import "os"

// Config holds the packer configuration.
type Config struct {
	// ProgressCallback is called during operations to report progress.
	// Optional.
	ProgressCallback ProgressCallback

	// Logger for structured logging. Optional.
	Logger Logger

	// DirPerm is the mode for directories created while unpacking.
	// Default: 0o755.
	DirPerm os.FileMode

	// FilePerm is the mode for files written by any operation.
	// Default: 0o644.
	FilePerm os.FileMode

	// StrictChecksums turns recoverable segment checksum mismatches
	// into hard failures. Default: false.
	StrictChecksums bool
}

// defaultConfig returns a config with sensible defaults.
func defaultConfig() Config {
	return Config{
		DirPerm:  0o755,
		FilePerm: 0o644,
	}
}

// Option is a functional option for configuring a Packer.
type Option func(*Config)

// WithProgressCallback sets a callback invoked as operations advance.
//
// Example:
//
//	p := packer.New(packer.WithProgressCallback(func(pr packer.Progress) {
//	    log.Printf("%s: %s", pr.Phase, pr.Path)
//	}))
func WithProgressCallback(cb ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = cb
	}
}

// WithLogger sets a logger for structured output. Without one the
// packer is silent.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithDirPerm sets the mode for directories created while unpacking.
func WithDirPerm(perm os.FileMode) Option {
	return func(c *Config) {
		c.DirPerm = perm
	}
}

// WithFilePerm sets the mode for files written by any operation.
func WithFilePerm(perm os.FileMode) Option {
	return func(c *Config) {
		c.FilePerm = perm
	}
}

// WithStrictChecksums makes Unpack fail on segment checksum mismatches
// instead of extracting the mismatched data with a warning.
func WithStrictChecksums(strict bool) Option {
	return func(c *Config) {
		c.StrictChecksums = strict
	}
}
