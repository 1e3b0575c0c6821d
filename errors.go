package pix

import (
	"fmt"
	"strings"
)

// The error types in this file are the contract between pix and its
// callers: every failure is one of these kinds so callers can branch with
// errors.As instead of matching message text.

// ArgumentError reports invalid caller input, such as a nil stream or an
// out-of-range processor parameter. It is surfaced immediately and never
// retried.
type ArgumentError struct {
	// Arg is the name of the offending argument or parameter.
	Arg string

	// Reason describes why the value was rejected.
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("pix: invalid argument %q: %s", e.Arg, e.Reason)
}

// FormatError reports a structural violation of a binary image grammar:
// bad block ordering, an oversized table or comment, a truncated
// compressed stream. Frames composited before the violation remain valid;
// there is no rollback.
type FormatError struct {
	// Format names the format whose grammar was violated, or is empty
	// when no registered format matched the header.
	Format string

	// Tried lists the formats consulted during detection. Only set when
	// detection itself failed.
	Tried []string

	// Reason describes the violation.
	Reason string
}

func (e *FormatError) Error() string {
	if len(e.Tried) > 0 {
		return fmt.Sprintf("pix: no matching format (tried %s)", strings.Join(e.Tried, ", "))
	}
	if e.Format != "" {
		return fmt.Sprintf("pix: %s: %s", e.Format, e.Reason)
	}
	return "pix: " + e.Reason
}

// DecodeError reports a resource-level failure: the stream could not be
// read at all. It is surfaced before any parsing begins.
type DecodeError struct {
	// Err is the underlying I/O error.
	Err error
}

func (e *DecodeError) Error() string {
	return "pix: unreadable stream: " + e.Err.Error()
}

// Unwrap returns the underlying I/O error.
func (e *DecodeError) Unwrap() error { return e.Err }

// IndexError reports out-of-bounds pixel or frame access. It signals a
// programming-contract violation in the caller.
type IndexError struct {
	// X, Y are the coordinates that were requested.
	X, Y int

	// W, H are the valid dimensions.
	W, H int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("pix: index (%d,%d) out of bounds %dx%d", e.X, e.Y, e.W, e.H)
}
