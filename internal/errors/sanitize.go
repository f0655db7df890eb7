package errors

import (
	"regexp"
	"strings"
)

// Patterns that must never reach a client: goroutine stack frames, filesystem
// paths, and SQL fragments leak implementation detail useful to an attacker.
var (
	stackFramePattern = regexp.MustCompile(`(?m)^\s*(goroutine \d+|\S+\.go:\d+).*$`)
	filePathPattern   = regexp.MustCompile(`(/[\w.\-]+)+\.go(:\d+)?`)
	sqlTokenPattern   = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|DROP|ALTER)\b[^.;]*`)
)

const redacted = "[redacted]"

// Sanitize strips stack traces, file paths and SQL-like fragments from a
// message before it is reflected to a client. Server-side logs keep the
// original.
func Sanitize(message string) string {
	if message == "" {
		return message
	}

	clean := stackFramePattern.ReplaceAllString(message, redacted)
	clean = filePathPattern.ReplaceAllString(clean, redacted)
	clean = sqlTokenPattern.ReplaceAllString(clean, redacted)

	clean = strings.Join(strings.Fields(clean), " ")
	if strings.TrimSpace(strings.ReplaceAll(clean, redacted, "")) == "" {
		return "An unexpected error occurred"
	}
	return clean
}
