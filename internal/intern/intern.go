// Package intern deduplicates long-lived strings. Every distinct byte
// sequence the builder ever sees — symbols, pretty names, trimmed source
// lines, peek blocks — is interned exactly once; everything downstream
// carries a Handle instead of a copy.
package intern

import "github.com/cespare/xxhash/v2"

// Handle is a canonical, cheaply-copyable reference to an interned string.
// Two handles returned from equal-content Add calls are the same pointer,
// so Handle equality is O(1) pointer equality, and map keys and JSON output
// can embed *Handle without re-copying bytes.
type Handle = *string

// Interner is a single-threaded, content-addressed string pool. It is not
// safe for concurrent use — the aggregator that owns one runs on a single
// goroutine, per the builder's single-threaded design.
type Interner struct {
	buckets map[uint64][]Handle
	empty   Handle
}

// New returns an empty interner. The empty string is pre-interned so
// callers never pay for a lookup when substituting "no value".
func New() *Interner {
	in := &Interner{buckets: make(map[uint64][]Handle)}
	in.empty = in.Add("")
	return in
}

// Empty returns the canonical handle for "".
func (in *Interner) Empty() Handle {
	return in.empty
}

// Add interns s, returning the canonical handle. Calling Add twice with
// byte-equal strings returns the same handle; storage for s is released
// only when the interner itself is discarded.
func (in *Interner) Add(s string) Handle {
	h := xxhash.Sum64String(s)
	for _, existing := range in.buckets[h] {
		if *existing == s {
			return existing
		}
	}
	owned := new(string)
	*owned = s
	in.buckets[h] = append(in.buckets[h], owned)
	return owned
}

// Len reports the number of distinct strings interned, for diagnostics.
func (in *Interner) Len() int {
	n := 0
	for _, bucket := range in.buckets {
		n += len(bucket)
	}
	return n
}
