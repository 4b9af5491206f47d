package biter

import (
	"iter"

	"golang.org/x/exp/constraints"
)

func Map[T, Out any](s iter.Seq[T], fn func(x T) Out) iter.Seq[Out] {
	return func(yield func(Out) bool) {
		for v := range s {
			if !yield(fn(v)) {
				return
			}
		}
	}
}

// RangeIterator yields start, start+1, ..., end-1.
func RangeIterator[Elem constraints.Integer](start, end Elem) iter.Seq[Elem] {
	return func(yield func(n Elem) bool) {
		for n := start; n < end; n++ {
			if !yield(n) {
				return
			}
		}
	}
}

func SliceIterator[T any](slice []T) iter.Seq[T] {
	return func(yield func(t T) bool) {
		for _, t := range slice {
			if !yield(t) {
				return
			}
		}
	}
}

// Enumerate yields each element of slice together with its index.
func Enumerate[T any](slice []T) iter.Seq2[int, T] {
	return func(yield func(i int, t T) bool) {
		for i, t := range slice {
			if !yield(i, t) {
				return
			}
		}
	}
}
