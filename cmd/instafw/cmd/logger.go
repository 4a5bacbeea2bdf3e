package cmd

import (
	"fmt"

	"github.com/apex/log"

	"github.com/fwkit/insta360/packer"
)

// apexLogger adapts apex/log to the packer.Logger interface.
type apexLogger struct{}

var _ packer.Logger = apexLogger{}

func (apexLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (apexLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Info(msg)
}

func (apexLogger) Error(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Error(msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

// newPacker builds a packer wired to the CLI's logging and flags.
func newPacker(opts ...packer.Option) *packer.Packer {
	if Verbose {
		log.SetLevel(log.DebugLevel)
	}
	return packer.New(append([]packer.Option{packer.WithLogger(apexLogger{})}, opts...)...)
}
