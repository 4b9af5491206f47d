package bcoll

import (
	"iter"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/brynbellomy/go-sortedset/errors"
	biter "github.com/brynbellomy/go-sortedset/iter"
)

var (
	ErrInvalidArgument = errors.WithNew("invalid argument").Set(errors.FaultCaller).Err()
	ErrInvalidInput    = errors.WithNew("invalid input").Set(errors.FaultCaller).Err()
	ErrIndexOutOfRange = errors.WithNew("index out of range").Set(errors.FaultCaller).Err()
	ErrNotFound        = errors.WithNew("not found").Set(errors.FaultCaller).Err()
)

// SortedSet is an ordered collection of unique float64 values backed by a single
// ascending slice.  Values compare by numeric equality, so -0 and +0 are the same
// element.  NaN is rejected.
//
// The zero value is an empty set ready to use.  A SortedSet is not safe for
// concurrent use; see GuardedSortedSet.
type SortedSet struct {
	elements []float64
}

// EachFunc is called by ForEach with each value, its index, and a snapshot of
// the whole set taken before the first call.
type EachFunc func(value float64, index int, snapshot []float64)

// NewSortedSet returns a set holding the distinct values of seed in ascending
// order.  The seed slice is not modified.
func NewSortedSet(seed ...float64) (*SortedSet, error) {
	for i, v := range seed {
		if err := checkValue(v); err != nil {
			return nil, errors.With(err).Fields("index", i).Err()
		}
	}

	elements := slices.Clone(seed)
	// stable so that the first of -0/+0 in the seed survives Compact
	slices.SortStableFunc(elements, compareFloat)
	elements = slices.Compact(elements)

	return &SortedSet{elements: slices.Clip(elements)}, nil
}

func MustSortedSet(seed ...float64) *SortedSet {
	ss, err := NewSortedSet(seed...)
	if err != nil {
		panic(err)
	}
	return ss
}

// FromSeq builds a set from every value yielded by seq.
func FromSeq(seq iter.Seq[float64]) (*SortedSet, error) {
	return NewSortedSet(slices.Collect(seq)...)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func checkValue(v float64) error {
	if math.IsNaN(v) {
		return errors.With(ErrInvalidInput).Fields("value", v).Err()
	}
	return nil
}

// search returns the index of the first element >= v, and whether it equals v.
func (ss *SortedSet) search(v float64) (int, bool) {
	i := sort.SearchFloat64s(ss.elements, v)
	return i, i < len(ss.elements) && ss.elements[i] == v
}

func (ss *SortedSet) Len() int {
	return len(ss.elements)
}

// At returns the value at index i.  Out-of-range indices report false rather
// than failing.
func (ss *SortedSet) At(i int) (float64, bool) {
	if i < 0 || i >= len(ss.elements) {
		return 0, false
	}
	return ss.elements[i], true
}

// Get is an alias of At.
func (ss *SortedSet) Get(i int) (float64, bool) {
	return ss.At(i)
}

// GetRange returns a copy of the elements from index start through index end,
// INCLUSIVE of end.  Indices are clamped to the set's bounds the way array
// slicing clamps them; an empty range yields an empty, non-nil slice.
func (ss *SortedSet) GetRange(start, end int) []float64 {
	start = max(start, 0)
	end = min(end, len(ss.elements)-1)
	if start > end {
		return []float64{}
	}
	return slices.Clone(ss.elements[start : end+1])
}

func (ss *SortedSet) Contains(v float64) bool {
	_, found := ss.search(v)
	return found
}

// IndexOf returns the position of v, or -1.
func (ss *SortedSet) IndexOf(v float64) int {
	if i, found := ss.search(v); found {
		return i
	}
	return -1
}

// Index is IndexOf for callers that prefer an error to a -1 sentinel.
func (ss *SortedSet) Index(v float64) (int, error) {
	i := ss.IndexOf(v)
	if i < 0 {
		return -1, errors.With(ErrNotFound).Fields("value", v).Err()
	}
	return i, nil
}

func (ss *SortedSet) Min() (float64, bool) {
	return ss.At(0)
}

func (ss *SortedSet) Max() (float64, bool) {
	return ss.At(len(ss.elements) - 1)
}

// ToSlice returns a copy of the elements in ascending order.
func (ss *SortedSet) ToSlice() []float64 {
	if len(ss.elements) == 0 {
		return []float64{}
	}
	return slices.Clone(ss.elements)
}

func (ss *SortedSet) Clone() *SortedSet {
	return &SortedSet{elements: slices.Clone(ss.elements)}
}

func (ss *SortedSet) Equal(other *SortedSet) bool {
	if other == nil {
		return false
	}
	return slices.Equal(ss.elements, other.elements)
}

// String renders the elements comma-separated without brackets, e.g. "1,2.5,3".
// Meant for diagnostics only.
func (ss *SortedSet) String() string {
	formatted := biter.Map(ss.Values(), func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	})
	return strings.Join(slices.Collect(formatted), ",")
}

// Values iterates over a snapshot of the set in ascending order.
func (ss *SortedSet) Values() iter.Seq[float64] {
	return biter.SliceIterator(ss.ToSlice())
}

// All iterates over a snapshot of the set as (index, value) pairs.
func (ss *SortedSet) All() iter.Seq2[int, float64] {
	return biter.Enumerate(ss.ToSlice())
}

// ForEach calls fn for every element in ascending index order.  fn receives a
// snapshot taken before the first call, so mutating the set from inside fn does
// not change which values are visited.
func (ss *SortedSet) ForEach(fn EachFunc) error {
	if fn == nil {
		return errors.With(ErrInvalidArgument, "ForEach requires a callback").Err()
	}
	snapshot := ss.ToSlice()
	for i := range biter.RangeIterator(0, len(snapshot)) {
		fn(snapshot[i], i, snapshot)
	}
	return nil
}

// bounds returns the half-open index span [lo, hi) of elements inside the value
// range.  An empty span has lo >= hi.
func (ss *SortedSet) bounds(lower, upper float64, exclusive bool) (int, int) {
	n := len(ss.elements)
	if n == 0 || math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		return 0, 0
	}

	var lo, hi int
	if exclusive {
		lo = sort.Search(n, func(i int) bool { return ss.elements[i] > lower })
		hi = sort.Search(n, func(i int) bool { return ss.elements[i] >= upper })
	} else {
		lo = sort.Search(n, func(i int) bool { return ss.elements[i] >= lower })
		hi = sort.Search(n, func(i int) bool { return ss.elements[i] > upper })
	}
	return lo, hi
}

// GetBetween returns every element v with lower <= v <= upper, or
// lower < v < upper when exclusive is set.  It returns an empty slice when the
// set is empty, when lower > upper, or when either bound is NaN.
func (ss *SortedSet) GetBetween(lower, upper float64, exclusive bool) []float64 {
	lo, hi := ss.bounds(lower, upper, exclusive)
	if lo >= hi {
		return []float64{}
	}
	return slices.Clone(ss.elements[lo:hi])
}

// Add inserts v if it is not already present.  It reports whether the set
// changed.
func (ss *SortedSet) Add(v float64) (bool, error) {
	if err := checkValue(v); err != nil {
		return false, err
	}
	i, found := ss.search(v)
	if found {
		return false, nil
	}
	ss.elements = slices.Insert(ss.elements, i, v)
	return true, nil
}

// AddAll inserts every value in vs and returns how many were new.  If any value
// is invalid nothing is inserted.
func (ss *SortedSet) AddAll(vs ...float64) (int, error) {
	for i, v := range vs {
		if err := checkValue(v); err != nil {
			return 0, errors.With(err).Fields("index", i).Err()
		}
	}
	var n int
	for _, v := range vs {
		// already validated
		if added, _ := ss.Add(v); added {
			n++
		}
	}
	return n, nil
}

// Remove deletes v and returns it.  The boolean is false when v was absent,
// which is not an error.
func (ss *SortedSet) Remove(v float64) (float64, bool) {
	i, found := ss.search(v)
	if !found {
		return 0, false
	}
	removed := ss.elements[i]
	ss.elements = slices.Delete(ss.elements, i, i+1)
	return removed, true
}

// RemoveAt deletes and returns the element at index i.  It fails with
// ErrIndexOutOfRange, leaving the set untouched, unless 0 <= i < Len().
func (ss *SortedSet) RemoveAt(i int) (float64, error) {
	if i < 0 || i >= len(ss.elements) {
		return 0, errors.With(ErrIndexOutOfRange).Fields("index", i, "len", len(ss.elements)).Err()
	}
	removed := ss.elements[i]
	ss.elements = slices.Delete(ss.elements, i, i+1)
	return removed, nil
}

// RemoveBetween deletes the elements GetBetween would return for the same
// arguments and returns them in ascending order.
func (ss *SortedSet) RemoveBetween(lower, upper float64, exclusive bool) []float64 {
	lo, hi := ss.bounds(lower, upper, exclusive)
	if lo >= hi {
		return []float64{}
	}
	removed := slices.Clone(ss.elements[lo:hi])
	ss.elements = slices.Delete(ss.elements, lo, hi)
	return removed
}

func (ss *SortedSet) Clear() {
	ss.elements = nil
}
