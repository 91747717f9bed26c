// Package monitoring holds the diagnostic logger shared by the snapshot
// writer, the catalog and the CLI. Exporters never log; they return errors.
package monitoring

import (
	"io"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// LogTo sends Logf output to w with the given prefix and standard flags.
func LogTo(w io.Writer, prefix string) {
	SetLogger(log.New(w, prefix, log.LstdFlags).Printf)
}
