package ast

// Arena is a flat store of values addressed by 1-based uint32 indices.
// Index 0 is reserved as the invalid ID, so parent/child relations can be
// stored as plain integers without pointer cycles.
type Arena[T any] struct {
	data []T
}

func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate appends a value and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	return uint32(len(a.data)) // #nosec G115 -- arena sizes fit uint32
}

// Get returns a pointer to the element, or nil for the invalid index.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || index > uint32(len(a.data)) { // #nosec G115
		return nil
	}
	return &a.data[index-1]
}

func (a *Arena[T]) Len() uint32 {
	return uint32(len(a.data)) // #nosec G115
}
