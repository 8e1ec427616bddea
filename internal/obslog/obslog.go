// Package obslog is the package-level diagnostic logger shared by snapshot
// and intercept. It defaults to log.Printf but may be redirected or muted,
// so tests don't have to scrape stderr.
package obslog

import "log"

// Printf is the current diagnostic sink. Replace it with SetOutput.
var Printf func(format string, v ...interface{}) = log.Printf

// SetOutput replaces the package logger. Passing nil installs a no-op sink.
func SetOutput(f func(format string, v ...interface{})) {
	if f == nil {
		Printf = func(string, ...interface{}) {}
		return
	}
	Printf = f
}
