package graph

import (
	"github.com/cbalona/reinsurance/internal/core/ndarray"
)

// Arithmetic factories. Each returns a new combinator node whose inputs are
// the operands' default channels; nothing is evaluated until a Model runs.
// Scalar variants wrap the raw value as a constant leaf node, mirroring the
// implicit wrapping of raw operands in the source system.

func binary(kind string, op func(a, b *ndarray.Array) (*ndarray.Array, error), lhs, rhs *Node) *Node {
	if lhs == nil || rhs == nil {
		panic(ErrNilOperand)
	}
	return NewNode("", binaryForwarder{kind: kind, op: op},
		lhs.DefaultEdge("lhs"), rhs.DefaultEdge("rhs"))
}

// Add returns a node computing n + other.
func (n *Node) Add(other *Node) *Node {
	return binary(KindAdd, (*ndarray.Array).Add, n, other)
}

// AddScalar returns a node computing n + s.
func (n *Node) AddScalar(s float64) *Node {
	return n.Add(ConstantScalar(s))
}

// Sub returns a node computing n - other.
func (n *Node) Sub(other *Node) *Node {
	return binary(KindSubtract, (*ndarray.Array).Sub, n, other)
}

// SubScalar returns a node computing n - s.
func (n *Node) SubScalar(s float64) *Node {
	return n.Sub(ConstantScalar(s))
}

// Mul returns a node computing n * other.
func (n *Node) Mul(other *Node) *Node {
	return binary(KindMultiply, (*ndarray.Array).Mul, n, other)
}

// MulScalar returns a node computing n * s.
func (n *Node) MulScalar(s float64) *Node {
	return n.Mul(ConstantScalar(s))
}

// Div returns a node computing n / other.
func (n *Node) Div(other *Node) *Node {
	return binary(KindDivide, (*ndarray.Array).Div, n, other)
}

// DivScalar returns a node computing n / s.
func (n *Node) DivScalar(s float64) *Node {
	return n.Div(ConstantScalar(s))
}

// Neg returns a node computing -n.
func (n *Node) Neg() *Node {
	return NewNode("", negateForwarder{}, n.DefaultEdge("x"))
}
