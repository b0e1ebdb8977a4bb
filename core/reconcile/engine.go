package reconcile

import (
	"sort"

	"github.com/google/go-cmp/cmp"
)

// Index keys items by the value key returns. Later items win on duplicate keys.
func Index[T any](items []T, key func(T) string) map[string]T {
	index := make(map[string]T, len(items))
	for _, item := range items {
		index[key(item)] = item
	}
	return index
}

// Keys returns the sorted keys of an index.
func Keys[T any](index map[string]T) []string {
	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Compare reports where key is present and, when both sides hold it, how the stored
// value differs from the source value.
func Compare[T any](key string, source, store map[string]T, opts ...cmp.Option) Presence {
	src, inSource := source[key]
	dst, inStore := store[key]

	result := Presence{Key: key, SourcePresent: inSource, StorePresent: inStore}
	if inSource && inStore {
		result.Mismatch = cmp.Diff(dst, src, opts...)
	}
	return result
}
