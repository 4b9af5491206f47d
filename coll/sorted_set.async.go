package bcoll

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/brynbellomy/go-sortedset/errors"
	bsync "github.com/brynbellomy/go-sortedset/sync"
)

// AsyncEachFunc is called by ForEachAsync for every element.  ctx is canceled
// when the traversal is canceled; a non-nil error halts the traversal.
type AsyncEachFunc func(ctx context.Context, value float64, index int, snapshot []float64) error

type TraversalOption func(*traversalConfig)

type traversalConfig struct {
	logger *slog.Logger
	yield  bool
}

func WithLogger(logger *slog.Logger) TraversalOption {
	return func(cfg *traversalConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithYield controls whether the traversal calls runtime.Gosched between
// elements.  It is on by default.
func WithYield(yield bool) TraversalOption {
	return func(cfg *traversalConfig) {
		cfg.yield = yield
	}
}

// Traversal is a handle on a running ForEachAsync.
type Traversal struct {
	id       string
	total    int
	token    *bsync.CancelToken
	chDone   chan struct{}
	visited  atomic.Int64
	canceled atomic.Bool
	err      error
	logger   *slog.Logger
}

// ForEachAsync visits a snapshot of the set in ascending order on a separate
// goroutine, yielding between elements.  It returns immediately.  The traversal
// stops early, without error, when ctx is canceled or Cancel is called; no
// callback starts after that.  A callback error stops it and is reported by
// Wait and Err.
func (ss *SortedSet) ForEachAsync(ctx context.Context, fn AsyncEachFunc, opts ...TraversalOption) (*Traversal, error) {
	if fn == nil {
		return nil, errors.With(ErrInvalidArgument, "ForEachAsync requires a callback").Err()
	}
	return startTraversal(ctx, ss.ToSlice(), fn, opts...), nil
}

func startTraversal(ctx context.Context, snapshot []float64, fn AsyncEachFunc, opts ...TraversalOption) *Traversal {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := traversalConfig{logger: slog.Default(), yield: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Traversal{
		id:     newTraversalID(),
		total:  len(snapshot),
		token:  bsync.NewCancelToken(),
		chDone: make(chan struct{}),
		logger: cfg.logger,
	}

	tctx, cancel := bsync.CombinedContext(ctx, t.token)
	go func() {
		defer close(t.chDone)
		defer cancel()
		t.err = t.run(tctx, snapshot, fn, cfg.yield)
	}()
	return t
}

func newTraversalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (t *Traversal) stopRequested(ctx context.Context) bool {
	// the token is checked directly because CombinedContext propagates it
	// asynchronously
	return t.token.Canceled() || ctx.Err() != nil
}

func (t *Traversal) run(ctx context.Context, snapshot []float64, fn AsyncEachFunc, yield bool) error {
	t.logger.Debug("traversal started", "traversal", t.id, "len", t.total)

	for i, v := range snapshot {
		if yield && i > 0 {
			runtime.Gosched()
		}
		if t.stopRequested(ctx) {
			t.markCanceled()
			return nil
		}

		if err := fn(ctx, v, i, snapshot); err != nil {
			if t.stopRequested(ctx) && errors.OneOf(err, context.Canceled, context.DeadlineExceeded) {
				t.markCanceled()
				return nil
			}
			t.logger.Warn("traversal callback failed", "traversal", t.id, "index", i, "err", err)
			return errors.With(err, "visiting element").Fields("index", i, "value", v).Err()
		}
		t.visited.Add(1)
	}

	t.logger.Debug("traversal finished", "traversal", t.id, "visited", t.Visited())
	return nil
}

func (t *Traversal) markCanceled() {
	t.canceled.Store(true)
	t.logger.Debug("traversal canceled", "traversal", t.id, "visited", t.Visited(), "len", t.total)
}

// ID uniquely identifies the traversal in log output.
func (t *Traversal) ID() string {
	return t.id
}

// Cancel asks the traversal to stop before its next element.  It does not wait;
// use Wait or Done for that.
func (t *Traversal) Cancel() {
	t.token.Cancel()
}

func (t *Traversal) Done() <-chan struct{} {
	return t.chDone
}

// Wait blocks until the traversal finishes or ctx is done, whichever is first.
func (t *Traversal) Wait(ctx context.Context) error {
	select {
	case <-t.chDone:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the callback error that halted the traversal.  It is nil while
// the traversal is running.
func (t *Traversal) Err() error {
	select {
	case <-t.chDone:
		return t.err
	default:
		return nil
	}
}

// Visited is the number of callbacks that returned successfully so far.
func (t *Traversal) Visited() int {
	return int(t.visited.Load())
}

// Canceled reports whether the traversal stopped before visiting every element.
func (t *Traversal) Canceled() bool {
	return t.canceled.Load()
}
