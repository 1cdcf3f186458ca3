package opool

import (
	"log/slog"

	"github.com/opool/opool/internal/core"
)

// SetLogger replaces the package-level logger used by opool.
// This allows applications to integrate opool logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; opool will not add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next log call and then cached.
// Call SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other opool operations.
//
// Example:
//
//	opool.SetLogger(myLogger.With("component", "opool"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
