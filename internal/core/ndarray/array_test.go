package ndarray

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int
		data    []float64
		wantErr error
	}{
		{
			name:  "valid 2x3",
			shape: []int{2, 3},
			data:  []float64{1, 2, 3, 4, 5, 6},
		},
		{
			name:  "scalar shape",
			shape: []int{},
			data:  []float64{7},
		},
		{
			name:    "length mismatch",
			shape:   []int{2, 2},
			data:    []float64{1, 2, 3},
			wantErr: ErrBadShape,
		},
		{
			name:    "negative dimension",
			shape:   []int{-1, 3},
			data:    []float64{},
			wantErr: ErrBadShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.shape, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.shape, a.Shape())
			assert.Equal(t, tt.data, a.Data())
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	data := []float64{1, 2}
	a, err := New([]int{2}, data)
	require.NoError(t, err)

	data[0] = 99
	got, err := a.At(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestFromNested2D(t *testing.T) {
	a, err := FromNested2D([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, a.Shape())

	v, err := a.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	_, err = FromNested2D([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrBadShape)
}

func TestAt(t *testing.T) {
	a := MustNew([]int{2, 2}, []float64{1, 2, 3, 4})

	_, err := a.At(0)
	assert.ErrorIs(t, err, ErrBadIndex)

	_, err = a.At(2, 0)
	assert.ErrorIs(t, err, ErrBadIndex)
}

func TestScalar(t *testing.T) {
	s := Scalar(3.5)
	assert.Equal(t, 0, s.NDim())

	v, err := s.Item()
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestString(t *testing.T) {
	a := MustNew([]int{2, 2}, []float64{1, 2.5, 3, 4})
	assert.Equal(t, "[[1 2.5] [3 4]]", a.String())
	assert.Equal(t, "7", Scalar(7).String())
}

func TestElementwise_Broadcasting(t *testing.T) {
	tests := []struct {
		name string
		a, b *Array
		op   func(a, b *Array) (*Array, error)
		want *Array
	}{
		{
			name: "same shape add",
			a:    MustNew([]int{2, 2}, []float64{1, 2, 3, 4}),
			b:    MustNew([]int{2, 2}, []float64{10, 20, 30, 40}),
			op:   (*Array).Add,
			want: MustNew([]int{2, 2}, []float64{11, 22, 33, 44}),
		},
		{
			name: "scalar broadcast mul",
			a:    MustNew([]int{2, 2}, []float64{1, 2, 3, 4}),
			b:    Scalar(2),
			op:   (*Array).Mul,
			want: MustNew([]int{2, 2}, []float64{2, 4, 6, 8}),
		},
		{
			name: "row broadcast sub",
			a:    MustNew([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6}),
			b:    MustNew([]int{3}, []float64{1, 1, 1}),
			op:   (*Array).Sub,
			want: MustNew([]int{2, 3}, []float64{0, 1, 2, 3, 4, 5}),
		},
		{
			name: "column broadcast add",
			a:    MustNew([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6}),
			b:    MustNew([]int{2, 1}, []float64{10, 20}),
			op:   (*Array).Add,
			want: MustNew([]int{2, 3}, []float64{11, 12, 13, 24, 25, 26}),
		},
		{
			name: "minimum",
			a:    MustNew([]int{3}, []float64{1, 5, 2}),
			b:    MustNew([]int{3}, []float64{3, 3, 3}),
			op:   (*Array).Minimum,
			want: MustNew([]int{3}, []float64{1, 3, 2}),
		},
		{
			name: "maximum with scalar",
			a:    MustNew([]int{3}, []float64{-1, 0, 4}),
			b:    Scalar(0),
			op:   (*Array).Maximum,
			want: MustNew([]int{3}, []float64{0, 0, 4}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.a, tt.b)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want.Data(), got.Data()); diff != "" {
				t.Errorf("data mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.want.Shape(), got.Shape())
		})
	}
}

func TestElementwise_ShapeMismatch(t *testing.T) {
	a := MustNew([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	b := MustNew([]int{2, 2}, []float64{1, 2, 3, 4})

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestScalarOps(t *testing.T) {
	a := MustNew([]int{3}, []float64{10, 20, 30})

	assert.Equal(t, []float64{11, 21, 31}, a.AddScalar(1).Data())
	assert.Equal(t, []float64{5, 15, 25}, a.SubScalar(5).Data())
	assert.Equal(t, []float64{20, 40, 60}, a.MulScalar(2).Data())
	assert.Equal(t, []float64{1, 2, 3}, a.DivScalar(10).Data())
	assert.Equal(t, []float64{-10, -20, -30}, a.Neg().Data())
	assert.Equal(t, []float64{10, 15, 15}, a.MinimumScalar(15).Data())
	assert.Equal(t, []float64{15, 20, 30}, a.MaximumScalar(15).Data())
	assert.Equal(t, []float64{15, 20, 25}, a.Clip(15, 25).Data())
}

func TestCumsumLast(t *testing.T) {
	a := MustNew([]int{2, 3}, []float64{1, 2, 3, 10, 10, 10})
	got := a.CumsumLast()
	assert.Equal(t, []float64{1, 3, 6, 10, 20, 30}, got.Data())

	// Rows are independent.
	assert.Equal(t, []int{2, 3}, got.Shape())
}

func TestDiffLast(t *testing.T) {
	a := MustNew([]int{2, 3}, []float64{1, 3, 6, 10, 20, 30})
	got := a.DiffLast(0)
	assert.Equal(t, []float64{1, 2, 3, 10, 10, 10}, got.Data())

	withPrepend := MustNew([]int{3}, []float64{2, 5, 5}).DiffLast(2)
	assert.Equal(t, []float64{0, 3, 0}, withPrepend.Data())
}

func TestEqualAndAllClose(t *testing.T) {
	a := MustNew([]int{2}, []float64{1, 2})
	b := MustNew([]int{2}, []float64{1, 2})
	c := MustNew([]int{2}, []float64{1, 2.0001})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, a.AllClose(c, 1e-3))
	assert.False(t, a.AllClose(c, 1e-6))
}
