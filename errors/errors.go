package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"slices"

	"github.com/pkg/errors"
)

// Re-exported functions from github.com/pkg/errors and standard library for convenience.
var (
	// New returns an error that formats as the given text. Each call to New returns
	// a distinct error value even if the text is identical.
	New = errors.New
	// Errorf formats according to a format specifier and returns the string as a
	// value that satisfies error.
	Errorf = errors.Errorf
	// Wrap returns an error annotating err with a stack trace at the point Wrap is called,
	// and the supplied message. If err is nil, Wrap returns nil.
	Wrap = errors.Wrap
	// Wrapf returns an error annotating err with a stack trace at the point Wrapf is called,
	// and the format specifier. If err is nil, Wrapf returns nil.
	Wrapf = errors.Wrapf
	// WithStack annotates err with a stack trace at the point WithStack was called.
	// If err is nil, WithStack returns nil.
	WithStack = errors.WithStack
	// Cause returns the underlying cause of the error, if possible.
	Cause = errors.Cause
	Is    = stderrors.Is
	As    = stderrors.As
	Join  = stderrors.Join
)

// Annotate wraps the error pointed to by err with the formatted message if err is non-nil.
// Meant for defer statements:
//
//	func (t *Traversal) run() (err error) {
//	    defer errors.Annotate(&err, "traversal %s", t.id)
//	    ...
//	}
func Annotate(err *error, msg string, args ...any) {
	if *err != nil {
		*err = errors.Wrapf(*err, msg, args...)
	}
}

// OneOf returns true if the received error matches any of the provided errors, either at
// its root cause or anywhere along its Unwrap chain.
func OneOf(received error, errs ...error) bool {
	if slices.Contains(errs, Cause(received)) {
		return true
	}
	for _, e := range errs {
		if stderrors.Is(received, e) {
			return true
		}
	}
	return false
}

// WithCause wraps an error with an explicit root cause. The message of err is kept and the
// cause is appended after a colon.
func WithCause(err error, cause error) error {
	return &withCause{err, cause}
}

type withCause struct {
	error
	cause error
}

func (w *withCause) Error() string { return w.error.Error() + ": " + w.cause.Error() }

func (w *withCause) Cause() error { return w.cause }

// Unwrap returns the wrapper error, not the cause. Use Cause() for the root cause.
func (w *withCause) Unwrap() error { return w.error }

func (w *withCause) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%+v\n", w.Cause())
			io.WriteString(s, w.error.Error())
			return
		}
		fallthrough
	case 's', 'q':
		io.WriteString(s, w.Error())
	}
}
