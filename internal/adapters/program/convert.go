package program

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/cbalona/reinsurance/internal/core/ndarray"
)

// arrayFromCty converts an HCL literal (a number, or arbitrarily nested
// tuples/lists of numbers) into an array. Nesting depth determines the
// number of dimensions; sibling lengths must agree.
func arrayFromCty(v cty.Value) (*ndarray.Array, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("%w: null value", ErrBadDefault)
	}
	shape, err := ctyShape(v)
	if err != nil {
		return nil, err
	}
	var data []float64
	if err := ctyFlatten(v, &data); err != nil {
		return nil, err
	}
	a, err := ndarray.New(shape, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDefault, err)
	}
	return a, nil
}

// ctyShape infers the shape by walking the first element of each nesting
// level; ragged siblings surface later as a length mismatch in ndarray.New.
func ctyShape(v cty.Value) ([]int, error) {
	if v.Type() == cty.Number {
		return nil, nil
	}
	if !v.CanIterateElements() {
		return nil, fmt.Errorf("%w: %s", ErrBadDefault, v.Type().FriendlyName())
	}
	n := v.LengthInt()
	if n == 0 {
		return []int{0}, nil
	}
	it := v.ElementIterator()
	it.Next()
	_, first := it.Element()
	inner, err := ctyShape(first)
	if err != nil {
		return nil, err
	}
	return append([]int{n}, inner...), nil
}

func ctyFlatten(v cty.Value, out *[]float64) error {
	if v.Type() == cty.Number {
		f, _ := v.AsBigFloat().Float64()
		*out = append(*out, f)
		return nil
	}
	if !v.CanIterateElements() {
		return fmt.Errorf("%w: %s", ErrBadDefault, v.Type().FriendlyName())
	}
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if err := ctyFlatten(elem, out); err != nil {
			return err
		}
	}
	return nil
}
