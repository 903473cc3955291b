// Package pointer provides helper functions related to Go pointers.
package pointer

// Of returns a pointer to a.
func Of[A any](a A) *A {
	return &a
}

// Copy returns a new pointer to a.
func Copy[A any](a *A) *A {
	if a == nil {
		return nil
	}
	na := *a
	return &na
}

// Eq returns true if both pointers are nil or both point to equal values.
func Eq[A comparable](a, b *A) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
