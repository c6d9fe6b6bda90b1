// Package logger provides the configurable logger shared by GOM components.
//
// The root logger uses github.com/rs/zerolog with a console writer and is
// silenced automatically under `go test`.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var root zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	root = zerolog.New(output).With().Timestamp().Logger().Level(zerolog.InfoLevel)

	if strings.HasSuffix(os.Args[0], ".test") {
		root = zerolog.Nop()
	}
}

// Logger returns the root logger.
func Logger() zerolog.Logger {
	return root
}

// Set allows a user to override the root logger.
func Set(l zerolog.Logger) {
	root = l
}

// SetOutput changes the output of the root logger.
func SetOutput(w io.Writer) {
	root = root.Output(w)
}

// Disable disables logging.
func Disable() {
	root = zerolog.Nop()
}
