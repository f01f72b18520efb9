package harp

import (
	"fmt"

	"github.com/golang/glog"
)

// WarningHandler receives a one-line, human-readable warning produced by a
// core operation. Operations never write warnings to stdout/stderr
// directly; they always go through the installed handler, so embedders
// (CLI wrappers, I/O layers) can route them anywhere (§7).
type WarningHandler func(message string)

var currentWarningHandler WarningHandler = defaultWarningHandler

func defaultWarningHandler(message string) {
	glog.Warning(message)
}

// SetWarningHandler installs h as the process-wide warning sink. Passing
// nil restores the default glog-backed handler.
func SetWarningHandler(h WarningHandler) {
	if h == nil {
		h = defaultWarningHandler
	}
	currentWarningHandler = h
}

func warnf(format string, args ...interface{}) {
	currentWarningHandler(fmt.Sprintf(format, args...))
}
