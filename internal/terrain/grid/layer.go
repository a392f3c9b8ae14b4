package grid

import "fmt"

// Layer is a dense per-cell value store over fixed bounds. Cells outside
// the bounds are rejected on write and reported absent on read.
type Layer[T any] struct {
	bounds Bounds
	values []T
}

// NewLayer allocates a layer with every cell set to fill.
func NewLayer[T any](b Bounds, fill T) *Layer[T] {
	values := make([]T, b.Area())
	for i := range values {
		values[i] = fill
	}
	return &Layer[T]{bounds: b, values: values}
}

// LayerFromValues wraps values laid out in Index order. It fails when the
// length does not match the bounds.
func LayerFromValues[T any](b Bounds, values []T) (*Layer[T], error) {
	if len(values) != b.Area() {
		return nil, fmt.Errorf("layer over %s needs %d values, got %d", b, b.Area(), len(values))
	}
	return &Layer[T]{bounds: b, values: values}, nil
}

// Bounds returns the rectangle the layer covers.
func (l *Layer[T]) Bounds() Bounds { return l.bounds }

// At returns the value at c and whether c is inside the layer.
func (l *Layer[T]) At(c Cell) (T, bool) {
	if !l.bounds.Contains(c) {
		var zero T
		return zero, false
	}
	return l.values[l.bounds.Index(c)], true
}

// Get returns the value at c, or the zero value when c is outside.
func (l *Layer[T]) Get(c Cell) T {
	v, _ := l.At(c)
	return v
}

// Set stores v at c. It returns false when c is outside the layer.
func (l *Layer[T]) Set(c Cell, v T) bool {
	if !l.bounds.Contains(c) {
		return false
	}
	l.values[l.bounds.Index(c)] = v
	return true
}

// Each visits every cell and its value x-major.
func (l *Layer[T]) Each(fn func(Cell, T)) {
	for i, v := range l.values {
		fn(l.bounds.CellAt(i), v)
	}
}

// Values exposes the backing slice in Index order. Callers must not
// change its length.
func (l *Layer[T]) Values() []T { return l.values }

// Clone returns an independent copy.
func (l *Layer[T]) Clone() *Layer[T] {
	values := make([]T, len(l.values))
	copy(values, l.values)
	return &Layer[T]{bounds: l.bounds, values: values}
}

// Equal reports whether two layers cover the same bounds with equal values.
func Equal[T comparable](a, b *Layer[T]) bool {
	if a.bounds != b.bounds || len(a.values) != len(b.values) {
		return false
	}
	for i := range a.values {
		if a.values[i] != b.values[i] {
			return false
		}
	}
	return true
}

// ElevationMap holds metres per cell. NaN marks nodata before filling.
type ElevationMap = Layer[float64]

// HeightField holds integer levels relative to the world baseline.
type HeightField = Layer[int]

// MaterialMap holds the surface material per cell.
type MaterialMap = Layer[Material]
