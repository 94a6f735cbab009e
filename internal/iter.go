// Package internal holds helpers shared by the uvm packages.
package internal

import (
	"iter"
)

// Concat2 chains key/value sequences, yielding each in turn.
// A later sequence may repeat a key of an earlier one; consumers that
// collect into a map see the last value.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
