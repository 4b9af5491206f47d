package bsync

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// CancelToken is a one-shot cancellation signal that can be shared between the goroutine
// driving some work and whoever wants to stop it.  Cancel may be called any number of
// times from any goroutine.
type CancelToken struct {
	ch   chan struct{}
	once sync.Once
}

func NewCancelToken() *CancelToken {
	return &CancelToken{ch: make(chan struct{})}
}

func (t *CancelToken) Cancel() {
	t.once.Do(func() { close(t.ch) })
}

func (t *CancelToken) Done() <-chan struct{} {
	return t.ch
}

func (t *CancelToken) Canceled() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}

// CombinedContext creates a context that finishes when any of the provided
// signals finish.  A signal can be a `context.Context`, a `chan struct{}`, a
// `*CancelToken`, or a `time.Duration` (which is transformed into a
// `context.WithTimeout`).
//
// The first `context.Context` among the signals becomes the parent of the
// returned context, so its values remain visible.
func CombinedContext(signals ...any) (context.Context, context.CancelFunc) {
	parent := context.Background()
	for _, signal := range signals {
		if c, ok := signal.(context.Context); ok {
			parent = c
			break
		}
	}

	ctx, cancel := context.WithCancel(parent)
	if len(signals) == 0 {
		return ctx, cancel
	}
	signals = append(signals, ctx)

	var cases []reflect.SelectCase
	var otherCancels []context.CancelFunc
	for _, signal := range signals {
		var ch reflect.Value

		switch sig := signal.(type) {
		case context.Context:
			ch = reflect.ValueOf(sig.Done())
		case *CancelToken:
			ch = reflect.ValueOf(sig.Done())
		case <-chan struct{}:
			ch = reflect.ValueOf(sig)
		case chan struct{}:
			ch = reflect.ValueOf(sig)
		case time.Duration:
			ctxTimeout, cancelTimeout := context.WithTimeout(ctx, sig)
			ch = reflect.ValueOf(ctxTimeout.Done())
			otherCancels = append(otherCancels, cancelTimeout)
		default:
			panic("invariant violation")
		}
		// context.Background().Done() is nil; a nil channel never fires
		if ch.IsNil() {
			continue
		}
		cases = append(cases, reflect.SelectCase{Chan: ch, Dir: reflect.SelectRecv})
	}

	go func() {
		defer cancel()
		for _, c := range otherCancels {
			defer c()
		}
		_, _, _ = reflect.Select(cases)
	}()

	return ctx, cancel
}
