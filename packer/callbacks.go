package packer

// Operation phases reported through ProgressCallback.
const (
	PhaseReading    = "reading"
	PhaseDecoding   = "decoding"
	PhaseExtracting = "extracting"
	PhaseEncoding   = "encoding"
	PhaseWriting    = "writing"
	PhaseComplete   = "complete"
)

// Progress contains information about a running pack or unpack
// operation. Passed to ProgressCallback.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// Current is the item being handled (1-based), Total the item
	// count for the phase; both are 0 when not applicable
	Current int
	Total   int

	// Path is the file currently being written, relative to the
	// output location (empty when not applicable)
	Path string

	// Bytes is the number of payload bytes handled so far
	Bytes int
}

// ProgressCallback is called during pack and unpack operations to
// report progress. Implementations should return quickly.
//
// Example:
//
//	p := packer.New(packer.WithProgressCallback(func(pr packer.Progress) {
//	    fmt.Printf("[%s] %d/%d %s\n", pr.Phase, pr.Current, pr.Total, pr.Path)
//	}))
type ProgressCallback func(Progress)

// Logger is an optional logging interface. This allows integration
// with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
