package cache

import (
	"maps"
	"slices"
)

// CloneFunc copies a value so that callers never share memory with the
// partition. Nil leaves values as they are.
type CloneFunc[V any] func(V) V

func cloneMap[K comparable, E any](m map[K]E) map[K]E {
	return maps.Clone(m)
}

func cloneSlice[E any](s []E) []E {
	return slices.Clone(s)
}

// clonePtr copies the pointed struct. A nil pointer stays nil so confirmed
// absences are preserved.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
