package bcoll

import (
	"context"
	"log/slog"
	"time"

	"github.com/ietxaniz/delock"

	"github.com/brynbellomy/go-sortedset/errors"
)

const DefaultLockTimeout = 10 * time.Second

var ErrLockTimeout = errors.WithNew("lock timeout").Set(errors.FaultInternal).Err()

// GuardedSortedSet serializes access to a SortedSet with a read/write lock.
// Lock acquisition gives up after a timeout and reports ErrLockTimeout rather
// than hanging, which is why every method returns an error.
type GuardedSortedSet struct {
	name string
	mu   *delock.RWMutex
	ss   *SortedSet
}

// NewGuardedSortedSet takes ownership of ss; the caller must not use ss
// directly afterwards.  A nil ss starts an empty set.  name appears in lock
// timeout errors and logs.
func NewGuardedSortedSet(name string, ss *SortedSet) *GuardedSortedSet {
	if ss == nil {
		ss = &SortedSet{}
	}
	mu := &delock.RWMutex{}
	mu.SetTimeout(DefaultLockTimeout)

	return &GuardedSortedSet{
		name: name,
		mu:   mu,
		ss:   ss,
	}
}

func (g *GuardedSortedSet) SetTimeout(timeout time.Duration) {
	g.mu.SetTimeout(timeout)
}

func (g *GuardedSortedSet) lockErr(err error, lockType string) error {
	slog.Error("sorted set lock timeout", "name", g.name, "lock", lockType, "err", err)
	return errors.With(ErrLockTimeout).Cause(err).Fields("name", g.name, "lock", lockType).Err()
}

func (g *GuardedSortedSet) read(fn func(ss *SortedSet)) error {
	id, err := g.mu.RLock()
	if err != nil {
		return g.lockErr(err, "read")
	}
	defer g.mu.RUnlock(id)

	fn(g.ss)
	return nil
}

// Do runs fn while holding the write lock, for compound operations that must
// not interleave with other callers.  fn must not call back into g.
func (g *GuardedSortedSet) Do(fn func(ss *SortedSet) error) error {
	id, err := g.mu.Lock()
	if err != nil {
		return g.lockErr(err, "write")
	}
	defer g.mu.Unlock(id)

	return fn(g.ss)
}

// Snapshot returns an independent copy of the current contents.
func (g *GuardedSortedSet) Snapshot() (snapshot *SortedSet, err error) {
	err = g.read(func(ss *SortedSet) { snapshot = ss.Clone() })
	return
}

func (g *GuardedSortedSet) Len() (n int, err error) {
	err = g.read(func(ss *SortedSet) { n = ss.Len() })
	return
}

func (g *GuardedSortedSet) At(i int) (v float64, ok bool, err error) {
	err = g.read(func(ss *SortedSet) { v, ok = ss.At(i) })
	return
}

func (g *GuardedSortedSet) Contains(v float64) (found bool, err error) {
	err = g.read(func(ss *SortedSet) { found = ss.Contains(v) })
	return
}

func (g *GuardedSortedSet) ToSlice() (xs []float64, err error) {
	err = g.read(func(ss *SortedSet) { xs = ss.ToSlice() })
	return
}

func (g *GuardedSortedSet) GetRange(start, end int) (xs []float64, err error) {
	err = g.read(func(ss *SortedSet) { xs = ss.GetRange(start, end) })
	return
}

func (g *GuardedSortedSet) GetBetween(lower, upper float64, exclusive bool) (xs []float64, err error) {
	err = g.read(func(ss *SortedSet) { xs = ss.GetBetween(lower, upper, exclusive) })
	return
}

func (g *GuardedSortedSet) Add(v float64) (added bool, err error) {
	err = g.Do(func(ss *SortedSet) (err error) {
		added, err = ss.Add(v)
		return
	})
	return
}

func (g *GuardedSortedSet) AddAll(vs ...float64) (n int, err error) {
	err = g.Do(func(ss *SortedSet) (err error) {
		n, err = ss.AddAll(vs...)
		return
	})
	return
}

func (g *GuardedSortedSet) Remove(v float64) (removed float64, found bool, err error) {
	err = g.Do(func(ss *SortedSet) error {
		removed, found = ss.Remove(v)
		return nil
	})
	return
}

func (g *GuardedSortedSet) RemoveAt(i int) (removed float64, err error) {
	err = g.Do(func(ss *SortedSet) (err error) {
		removed, err = ss.RemoveAt(i)
		return
	})
	return
}

func (g *GuardedSortedSet) RemoveBetween(lower, upper float64, exclusive bool) (removed []float64, err error) {
	err = g.Do(func(ss *SortedSet) error {
		removed = ss.RemoveBetween(lower, upper, exclusive)
		return nil
	})
	return
}

func (g *GuardedSortedSet) Clear() error {
	return g.Do(func(ss *SortedSet) error {
		ss.Clear()
		return nil
	})
}

// ForEach visits a snapshot outside the lock, so fn may call back into g.
func (g *GuardedSortedSet) ForEach(fn EachFunc) error {
	if fn == nil {
		return errors.With(ErrInvalidArgument, "ForEach requires a callback").Err()
	}
	snapshot, err := g.Snapshot()
	if err != nil {
		return err
	}
	return snapshot.ForEach(fn)
}

// ForEachAsync holds the read lock only long enough to take a snapshot.
func (g *GuardedSortedSet) ForEachAsync(ctx context.Context, fn AsyncEachFunc, opts ...TraversalOption) (*Traversal, error) {
	if fn == nil {
		return nil, errors.With(ErrInvalidArgument, "ForEachAsync requires a callback").Err()
	}
	snapshot, err := g.ToSlice()
	if err != nil {
		return nil, err
	}
	return startTraversal(ctx, snapshot, fn, opts...), nil
}

func (g *GuardedSortedSet) String() string {
	var s string
	if err := g.read(func(ss *SortedSet) { s = ss.String() }); err != nil {
		return "<" + g.name + ": lock timeout>"
	}
	return s
}
