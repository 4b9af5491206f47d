package errors

import "fmt"

// Builder chains annotations onto an error. A nil *Builder is inert, so
// With(nil).Fields(...).Err() returns nil.
type Builder struct {
	error
}

// With starts a Builder from parent, optionally wrapping it with a formatted message.
func With(parent error, args ...any) *Builder {
	if parent == nil {
		return nil
	} else if len(args) == 0 {
		return &Builder{error: parent}
	}

	msg, isStr := args[0].(string)
	if !isStr {
		panic(fmt.Sprintf("invariant violation: got %T, expected string", args[0]))
	}
	if len(args) > 1 {
		msg = fmt.Sprintf(msg, args[1:]...)
	}
	return &Builder{error: Wrap(parent, msg)}
}

// WithNew starts a Builder from a new error message or an existing error.
func WithNew(parentOrMsg any) *Builder {
	var err error
	switch x := parentOrMsg.(type) {
	case string:
		err = New(x)
	case error:
		err = x
	default:
		panic(fmt.Sprintf("invariant violation: got %T, expected error or string", parentOrMsg))
	}
	return &Builder{error: err}
}

func (b *Builder) Err() error {
	if b == nil {
		return nil
	}
	return b.error
}

func (b *Builder) Wrapf(msg string, args ...any) *Builder {
	if b == nil {
		return nil
	}
	b.error = Wrapf(b.error, msg, args...)
	return b
}

func (b *Builder) Cause(cause error) *Builder {
	if b == nil {
		return nil
	}
	b.error = WithCause(b.error, cause)
	return b
}

func (b *Builder) Fields(fields ...any) *Builder {
	if b == nil {
		return nil
	}
	b.error = WithMetadata(b.error, Fields(fields))
	return b
}

func (b *Builder) Stack() *Builder {
	if b == nil {
		return nil
	}
	b.error = WithStack(b.error)
	return b
}

// Set applies Fault and Fields values in order.
func (b *Builder) Set(things ...any) *Builder {
	if b == nil {
		return nil
	}
	for _, thing := range things {
		switch v := thing.(type) {
		case Fault:
			b.error = WithMetadata(b.error, v)
		case Fields:
			b = b.Fields(v...)
		default:
			panic(fmt.Sprintf("invariant violation: got %T, expected Fault or Fields", thing))
		}
	}
	return b
}
