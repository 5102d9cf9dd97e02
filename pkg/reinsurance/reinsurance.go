package reinsurance

import (
	"github.com/cbalona/reinsurance/internal/app/usecases"
	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/layer"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
)

// Re-export core types for convenience
type (
	Array     = ndarray.Array
	Node      = graph.Node
	Edge      = graph.Edge
	GraphView = graph.GraphView
	Model     = usecases.Model
	Backend   = usecases.Backend
	Results   = usecases.Results

	QuotaShareParams   = layer.QuotaShareParams
	ExcessOfLossParams = layer.ExcessOfLossParams
)

// Inputs is the value map Compute consumes, keyed by input node id.
type Inputs = map[string]*ndarray.Array

// Array constructors

// NewArray builds an array from a shape and row-major data.
func NewArray(shape []int, data []float64) (*Array, error) { return ndarray.New(shape, data) }

// MustNewArray is NewArray panicking on invalid shape, for literals in tests
// and examples.
func MustNewArray(shape []int, data []float64) *Array { return ndarray.MustNew(shape, data) }

// Scalar builds a zero-dimensional array holding one value.
func Scalar(v float64) *Array { return ndarray.Scalar(v) }

// FromNested2D builds a two-dimensional array from row slices.
func FromNested2D(rows [][]float64) (*Array, error) { return ndarray.FromNested2D(rows) }

// Graph constructors

// Input declares a named model entry point.
func Input(name string) *Node { return graph.Input(name) }

// Constant wraps a fixed array as a leaf node.
func Constant(v *Array) *Node { return graph.Constant(v) }

// ConstantScalar wraps a fixed scalar as a leaf node.
func ConstantScalar(v float64) *Node { return graph.ConstantScalar(v) }

// Layer constructors

// QuotaShare applies a proportional quota share treaty to a node.
func QuotaShare(name string, p QuotaShareParams, x *Node) (*Node, error) {
	return layer.QuotaShare(name, p, x)
}

// ExcessOfLoss applies a per-occurrence excess of loss layer to a node.
func ExcessOfLoss(name string, p ExcessOfLossParams, x *Node) (*Node, error) {
	return layer.ExcessOfLoss(name, p, x)
}

// Recovery selects a layer's recovery channel as a standalone node.
func Recovery(name string, upstream *Node) *Node { return layer.Recovery(name, upstream) }

// Commission selects a quota share's commission channel as a standalone node.
func Commission(name string, upstream *Node) *Node { return layer.Commission(name, upstream) }

// ReinstatementPremium selects an excess of loss layer's reinstatement
// premium channel as a standalone node.
func ReinstatementPremium(name string, upstream *Node) *Node {
	return layer.ReinstatementPremium(name, upstream)
}

// Model construction and backends

// ModelOption customizes a Model at construction.
type ModelOption = usecases.ModelOption

// NewModel resolves outputs against declared inputs into a ready model.
func NewModel(inputs []*Node, outputs []*Node, opts ...ModelOption) (*Model, error) {
	return usecases.NewModel(inputs, outputs, opts...)
}

// WithBackend selects the execution backend for a model.
func WithBackend(b Backend) ModelOption { return usecases.WithBackend(b) }

// NewSequentialBackend creates the single-threaded reference backend.
func NewSequentialBackend() Backend { return usecases.NewSequentialBackend() }

// NewParallelBackend creates a worker-pool backend; workers <= 0 selects one
// worker per CPU.
func NewParallelBackend(workers int) Backend { return usecases.NewParallelBackend(workers) }
