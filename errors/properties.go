package errors

import (
	"fmt"
	"io"
)

// Fault records who is responsible for an error: the caller passing bad input, or the
// library failing internally (a lock timeout, for example).
type Fault uint8

const (
	FaultUnknown Fault = iota
	FaultCaller
	FaultInternal
)

func (f Fault) String() string {
	switch f {
	case FaultCaller:
		return "caller"
	case FaultInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Fields represents structured key-value pairs for logging. Fields are formatted
// as logfmt when the error is printed: "error message key1=value1 key2="quoted value"".
// Use %s or %v to include fields in output; %q outputs only the error message.
type Fields []any

// Add appends additional key-value pairs.
func (f *Fields) Add(fields ...any) {
	*f = append(*f, fields...)
}

func (f Fields) List() []any {
	return f
}

// withMetadata carries a Fault and Fields in a single wrapper.
type withMetadata struct {
	parent error
	fault  Fault
	fields Fields
}

// WithMetadata wraps an error with a Fault and/or fields. Any item that is not a Fault or
// a Fields slice is treated as an individual field key or value.
func WithMetadata(err error, items ...any) error {
	if err == nil {
		return nil
	}

	wm := &withMetadata{parent: err}

	var pendingFields []any
	for _, item := range items {
		switch v := item.(type) {
		case Fault:
			wm.fault = v
		case Fields:
			pendingFields = append(pendingFields, v...)
		default:
			pendingFields = append(pendingFields, v)
		}
	}
	if len(pendingFields) > 0 {
		wm.fields = pendingFields
	}
	return wm
}

func (wm *withMetadata) Error() string {
	return wm.parent.Error()
}

func (wm *withMetadata) Unwrap() error {
	return wm.parent
}

func (wm *withMetadata) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%+v", wm.parent)
		} else {
			io.WriteString(s, wm.Error())
		}
		wm.writeFields(s)
	case 's':
		io.WriteString(s, wm.Error())
		wm.writeFields(s)
	case 'q':
		fmt.Fprintf(s, "%q", wm.Error())
	}
}

func (wm *withMetadata) writeFields(w io.Writer) {
	allFields := GetFields(wm)
	if len(allFields) > 0 {
		io.WriteString(w, " ")
		formatLogfmtFields(w, allFields)
	}
}

type unwrapper interface {
	Unwrap() error
}

// GetFault traverses the error chain and returns the first non-unknown fault found.
// Outer layers override inner layers.
func GetFault(err error) Fault {
	for err != nil {
		if wm, ok := err.(*withMetadata); ok {
			if wm.fault != FaultUnknown {
				return wm.fault
			}
			err = wm.parent
			continue
		}
		u, ok := err.(unwrapper)
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return FaultUnknown
}

// GetFields collects the fields of every metadata wrapper in the error chain, outermost
// first.
func GetFields(err error) Fields {
	var fields []any
	for err != nil {
		var wm *withMetadata
		if !As(err, &wm) {
			break
		}
		fields = append(fields, wm.fields...)
		err = wm.parent
	}
	return fields
}

// GetField returns the value stored under key in the error's fields.
func GetField(err error, key string) (any, bool) {
	fields := GetFields(err)
	for i := 0; i+1 < len(fields); i += 2 {
		if fmt.Sprint(fields[i]) == key {
			return fields[i+1], true
		}
	}
	return nil, false
}

func formatLogfmtFields(w io.Writer, fields []any) {
	for i := 0; i < len(fields); i += 2 {
		if i > 0 {
			io.WriteString(w, " ")
		}
		io.WriteString(w, fmt.Sprint(fields[i]))
		io.WriteString(w, "=")

		if i+1 < len(fields) {
			switch v := fields[i+1].(type) {
			case string:
				if needsQuoting(v) {
					fmt.Fprintf(w, "%q", v)
				} else {
					io.WriteString(w, v)
				}
			default:
				fmt.Fprint(w, v)
			}
		}
	}
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r == ' ' || r == '=' || r == '"' || r == '\n' || r == '\t' || r == '\r' {
			return true
		}
	}
	return false
}
