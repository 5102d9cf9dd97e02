// Package ndarray provides the immutable N-dimensional numeric value that
// flows along graph edges. Arrays support elementwise arithmetic with
// NumPy-style broadcasting plus the cumulative operations the reinsurance
// layers need along the occurrence axis.
// PRINCIPLES:
// - KISS: flat float64 slice + shape, no views or strides exposed
// - Immutability: every operation allocates its result, inputs never change
package ndarray

import (
	"fmt"
	"strconv"
	"strings"
)

// Array is an immutable N-dimensional array of float64 values.
// A zero-dimensional Array holds a single scalar.
type Array struct {
	shape []int
	data  []float64
}

// New creates an array from a shape and row-major data.
func New(shape []int, data []float64) (*Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrBadShape, d)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v wants %d values, got %d", ErrBadShape, shape, n, len(data))
	}
	a := &Array{
		shape: append([]int(nil), shape...),
		data:  append([]float64(nil), data...),
	}
	return a, nil
}

// MustNew is New but panics on error. Intended for literals in tests and examples.
func MustNew(shape []int, data []float64) *Array {
	a, err := New(shape, data)
	if err != nil {
		panic(err)
	}
	return a
}

// Scalar wraps a single value as a zero-dimensional array.
func Scalar(v float64) *Array {
	return &Array{shape: []int{}, data: []float64{v}}
}

// FromNested2D builds a 2-dimensional array from nested rows.
// All rows must have the same length.
func FromNested2D(rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return New([]int{0, 0}, nil)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrBadShape, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return New([]int{len(rows), cols}, data)
}

// Full creates an array of the given shape where every element is v.
func Full(shape []int, v float64) (*Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrBadShape, d)
		}
		n *= d
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return New(shape, data)
}

// Zeros creates an array of the given shape filled with zeros.
func Zeros(shape []int) (*Array, error) {
	return Full(shape, 0)
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

// NDim returns the number of dimensions.
func (a *Array) NDim() int {
	return len(a.shape)
}

// Size returns the total number of elements.
func (a *Array) Size() int {
	return len(a.data)
}

// Data returns a copy of the row-major element data.
func (a *Array) Data() []float64 {
	return append([]float64(nil), a.data...)
}

// At returns the element at the given multi-dimensional index.
func (a *Array) At(idx ...int) (float64, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("%w: got %d indices for %d dimensions", ErrBadIndex, len(idx), len(a.shape))
	}
	off := 0
	for i, d := range a.shape {
		if idx[i] < 0 || idx[i] >= d {
			return 0, fmt.Errorf("%w: index %d out of range for dimension %d (size %d)", ErrBadIndex, idx[i], i, d)
		}
		off = off*d + idx[i]
	}
	return a.data[off], nil
}

// Item returns the sole element of a zero-dimensional or single-element array.
func (a *Array) Item() (float64, error) {
	if len(a.data) != 1 {
		return 0, fmt.Errorf("%w: array with %d elements has no single item", ErrBadIndex, len(a.data))
	}
	return a.data[0], nil
}

// Equal reports whether two arrays have identical shapes and bit-identical values.
func (a *Array) Equal(b *Array) bool {
	if b == nil || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// AllClose reports whether two arrays are equal within an absolute tolerance.
func (a *Array) AllClose(b *Array, tol float64) bool {
	if b == nil || len(a.data) != len(b.data) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for i := range a.data {
		d := a.data[i] - b.data[i]
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}

// String renders the array as nested brackets, useful in logs and test failures.
func (a *Array) String() string {
	var b strings.Builder
	a.render(&b, 0, 0)
	return b.String()
}

// render writes the subarray rooted at offset for the given dimension.
func (a *Array) render(b *strings.Builder, dim, off int) int {
	if dim == len(a.shape) {
		b.WriteString(strconv.FormatFloat(a.data[off], 'g', -1, 64))
		return off + 1
	}
	b.WriteByte('[')
	for i := 0; i < a.shape[dim]; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		off = a.render(b, dim+1, off)
	}
	b.WriteByte(']')
	return off
}
