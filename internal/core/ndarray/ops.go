package ndarray

import (
	"fmt"
	"math"
)

// broadcastShape computes the common shape of two operands under NumPy
// broadcasting rules: shapes are aligned on their trailing dimensions and a
// dimension of size 1 stretches to match its counterpart.
func broadcastShape(a, b []int) ([]int, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int, n)
	for i := 1; i <= n; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db:
			out[n-i] = da
		case da == 1:
			out[n-i] = db
		case db == 1:
			out[n-i] = da
		default:
			return nil, fmt.Errorf("%w: %v and %v", ErrShapeMismatch, a, b)
		}
	}
	return out, nil
}

// broadcastStrides returns row-major strides for src viewed through the
// broadcast target shape. Stretched dimensions get a zero stride.
func broadcastStrides(src, target []int) []int {
	strides := make([]int, len(target))
	acc := 1
	for i := len(src) - 1; i >= 0; i-- {
		if src[i] == 1 && target[len(target)-len(src)+i] != 1 {
			strides[len(target)-len(src)+i] = 0
		} else {
			strides[len(target)-len(src)+i] = acc
		}
		acc *= src[i]
	}
	return strides
}

// elementwise applies f over two operands with broadcasting.
func elementwise(a, b *Array, f func(x, y float64) float64) (*Array, error) {
	shape, err := broadcastShape(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	sa := broadcastStrides(a.shape, shape)
	sb := broadcastStrides(b.shape, shape)

	n := 1
	for _, d := range shape {
		n *= d
	}
	out := make([]float64, n)
	idx := make([]int, len(shape))
	for i := 0; i < n; i++ {
		offA, offB := 0, 0
		for d := range idx {
			offA += idx[d] * sa[d]
			offB += idx[d] * sb[d]
		}
		out[i] = f(a.data[offA], b.data[offB])
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return &Array{shape: shape, data: out}, nil
}

// apply maps f over every element, producing a new array of the same shape.
func (a *Array) apply(f func(float64) float64) *Array {
	out := make([]float64, len(a.data))
	for i, v := range a.data {
		out[i] = f(v)
	}
	return &Array{shape: append([]int(nil), a.shape...), data: out}
}

// Add returns a + b elementwise with broadcasting.
func (a *Array) Add(b *Array) (*Array, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b elementwise with broadcasting.
func (a *Array) Sub(b *Array) (*Array, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns a * b elementwise with broadcasting.
func (a *Array) Mul(b *Array) (*Array, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x * y })
}

// Div returns a / b elementwise with broadcasting. Division by zero follows
// IEEE-754 semantics (Inf/NaN), matching the numeric library of the source system.
func (a *Array) Div(b *Array) (*Array, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x / y })
}

// Minimum returns the elementwise minimum of a and b with broadcasting.
func (a *Array) Minimum(b *Array) (*Array, error) {
	return elementwise(a, b, math.Min)
}

// Maximum returns the elementwise maximum of a and b with broadcasting.
func (a *Array) Maximum(b *Array) (*Array, error) {
	return elementwise(a, b, math.Max)
}

// Neg returns the elementwise negation.
func (a *Array) Neg() *Array {
	return a.apply(func(v float64) float64 { return -v })
}

// AddScalar returns a + s elementwise.
func (a *Array) AddScalar(s float64) *Array {
	return a.apply(func(v float64) float64 { return v + s })
}

// SubScalar returns a - s elementwise.
func (a *Array) SubScalar(s float64) *Array {
	return a.apply(func(v float64) float64 { return v - s })
}

// MulScalar returns a * s elementwise.
func (a *Array) MulScalar(s float64) *Array {
	return a.apply(func(v float64) float64 { return v * s })
}

// DivScalar returns a / s elementwise.
func (a *Array) DivScalar(s float64) *Array {
	return a.apply(func(v float64) float64 { return v / s })
}

// MinimumScalar caps every element at s.
func (a *Array) MinimumScalar(s float64) *Array {
	return a.apply(func(v float64) float64 { return math.Min(v, s) })
}

// MaximumScalar floors every element at s.
func (a *Array) MaximumScalar(s float64) *Array {
	return a.apply(func(v float64) float64 { return math.Max(v, s) })
}

// Clip bounds every element to the [lo, hi] interval.
func (a *Array) Clip(lo, hi float64) *Array {
	return a.apply(func(v float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	})
}

// lastAxis returns the length of the last axis and the number of rows
// running over it. A zero-dimensional array is treated as a single row of one.
func (a *Array) lastAxis() (rows, width int) {
	if len(a.shape) == 0 {
		return 1, 1
	}
	width = a.shape[len(a.shape)-1]
	rows = 1
	for _, d := range a.shape[:len(a.shape)-1] {
		rows *= d
	}
	return rows, width
}

// CumsumLast returns the cumulative sum along the last axis. For the
// reinsurance layers the last axis is the occurrence axis within a period.
func (a *Array) CumsumLast() *Array {
	rows, width := a.lastAxis()
	out := make([]float64, len(a.data))
	for r := 0; r < rows; r++ {
		acc := 0.0
		for c := 0; c < width; c++ {
			acc += a.data[r*width+c]
			out[r*width+c] = acc
		}
	}
	return &Array{shape: append([]int(nil), a.shape...), data: out}
}

// DiffLast returns the first difference along the last axis, with prepend as
// the value preceding each row (same contract as numpy.diff(prepend=...)).
func (a *Array) DiffLast(prepend float64) *Array {
	rows, width := a.lastAxis()
	out := make([]float64, len(a.data))
	for r := 0; r < rows; r++ {
		prev := prepend
		for c := 0; c < width; c++ {
			v := a.data[r*width+c]
			out[r*width+c] = v - prev
			prev = v
		}
	}
	return &Array{shape: append([]int(nil), a.shape...), data: out}
}
