// Package errs implements the error taxonomy shared by chunk, fragpack,
// filecache, jsonobj, mpat and httpchunk. It is the adapted form of the
// teacher's error.go/http_error.go: Status int becomes Kind, and
// NewHttpError(status, msg) becomes New(kind, msg).
package errs

import "fmt"

// Kind classifies a failure into one of the abstract kinds named by the
// specification's error handling design.
type Kind int

const (
	// InvalidArgument covers null inputs and non-positive lengths where forbidden.
	InvalidArgument Kind = iota
	// ShortBuffer means a writer ran out of destination space; a partial count was returned.
	ShortBuffer
	// UnexpectedEof means a parser/decoder ran out of bytes mid-token.
	UnexpectedEof
	// StaleFile means a file segment's (inode,mtime,size) guard no longer matches.
	StaleFile
	// Io wraps an OS-level read/write/seek failure.
	Io
	// Protocol means malformed wire data, e.g. a bad HTTP chunk size line.
	Protocol
	// NotFound means a dotted-path key lookup failed.
	NotFound
	// OutOfMemory means the allocator returned null (Go: allocation failed/was refused).
	OutOfMemory
	// WouldBlock means a non-blocking call could not proceed immediately.
	WouldBlock
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case ShortBuffer:
		return "short_buffer"
	case UnexpectedEof:
		return "unexpected_eof"
	case StaleFile:
		return "stale_file"
	case Io:
		return "io"
	case Protocol:
		return "protocol"
	case NotFound:
		return "not_found"
	case OutOfMemory:
		return "out_of_memory"
	case WouldBlock:
		return "would_block"
	default:
		return "unknown"
	}
}

// Error is the error type this module's core packages construct for
// their own failures. Errors from an underlying io.Reader/io.Writer,
// file or filecache Medium can be returned unwrapped (fragpack's
// ReadFrom/WriteTo, for example), so errors.As does not find an Error
// in every returned error. Callers should use errors.As to recover it
// and switch on Kind rather than comparing error strings.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an *Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error around an existing error, preserving it as
// Cause so errors.Unwrap/errors.Is keeps working.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
