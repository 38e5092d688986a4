// Package log is the leveled logger shared by the paramelide packages.
package log

import (
	"github.com/tliron/commonlog"

	// Must include a backend implementation.
	_ "github.com/tliron/commonlog/simple"
)

var logger = commonlog.GetLogger("paramelide")

// Configure sets verbosity; debug adds per-edit detail. An empty path logs
// to stderr.
func Configure(debug bool, path string) {
	verbosity := 1
	if debug {
		verbosity = 2
	}
	var p *string
	if path != "" {
		p = &path
	}
	commonlog.Configure(verbosity, p)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}
