// Package nn implements neural network modules on top of the Born tensor
// engine.
//
// This package provides:
//   - Module interface: a node in a tree of named attributes
//   - Parameter: trainable tensors, the leaves of the attribute tree
//   - Composite modules: Sequential, Residual
//   - Layers: Linear, Embedding, BatchNorm1d/2d, LayerNorm1d, Conv,
//     RNNCell/RNN, LSTMCell/LSTM, SoftmaxLoss, activations, Dropout
//
// A module declares its attributes as an ordered list of tagged values
// (parameter, child module, list, dict, opaque). Parameter discovery, mode
// propagation and state-dict serialization are generic traversals over that
// closed variant set, so heterogeneous nested structures of layers expose a
// uniform trainable-state view without reflection.
//
// Type parameter B must satisfy the tensor.Backend interface.
package nn

import (
	"github.com/born-ml/born/tensor"
)

// Module is the base interface for all neural network components.
//
// Attributes returns the module's attributes in declaration order; the
// attribute graph restricted to modules and parameters must be acyclic.
// Traversal on a self-referential graph does not terminate; keeping the
// graph a tree is the caller's responsibility.
type Module[B tensor.Backend] interface {
	// Attributes returns the module's attributes in declaration order.
	Attributes() []Attr[B]

	// Training reports whether the module is in training mode.
	Training() bool

	// SetTraining sets the module's own mode flag. Use Train/Eval to
	// propagate the flag through the whole module tree.
	SetTraining(training bool)
}

// Layer is a Module with the single-tensor invocation contract. Sequential
// and Residual compose Layers; modules with richer signatures (RNN, LSTM,
// SoftmaxLoss) expose their own Forward methods instead.
type Layer[B tensor.Backend] interface {
	Module[B]

	Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}

// Attr is a single named module attribute.
type Attr[B tensor.Backend] struct {
	Name  string
	Value Value[B]
}

// Value is the closed set of things a module attribute may hold: a
// parameter, a child module, an ordered list, an ordered dict, or an opaque
// value that contributes nothing to discovery.
type Value[B tensor.Backend] interface {
	isValue()
}

type paramValue[B tensor.Backend] struct {
	p *Parameter[B]
}

type childValue[B tensor.Backend] struct {
	m Module[B]
}

type listValue[B tensor.Backend] struct {
	items []Value[B]
}

type dictValue[B tensor.Backend] struct {
	entries []Entry[B]
}

type opaqueValue[B tensor.Backend] struct {
	v any
}

func (paramValue[B]) isValue()  {}
func (childValue[B]) isValue()  {}
func (listValue[B]) isValue()   {}
func (dictValue[B]) isValue()   {}
func (opaqueValue[B]) isValue() {}

// Entry is a key/value pair of a Dict attribute. Entry order is preserved
// by every traversal, so dict iteration is deterministic.
type Entry[B tensor.Backend] struct {
	Key   string
	Value Value[B]
}

// Param wraps a parameter as an attribute value.
func Param[B tensor.Backend](p *Parameter[B]) Value[B] {
	return paramValue[B]{p: p}
}

// Child wraps a nested module as an attribute value.
func Child[B tensor.Backend](m Module[B]) Value[B] {
	return childValue[B]{m: m}
}

// List wraps an ordered sequence of attribute values.
func List[B tensor.Backend](items ...Value[B]) Value[B] {
	return listValue[B]{items: items}
}

// Dict wraps an insertion-ordered set of named attribute values.
func Dict[B tensor.Backend](entries ...Entry[B]) Value[B] {
	return dictValue[B]{entries: entries}
}

// Opaque wraps any other value. Opaque attributes are visible in the
// attribute list but contribute nothing to parameter or child discovery and
// are never serialized.
func Opaque[B tensor.Backend](v any) Value[B] {
	return opaqueValue[B]{v: v}
}

// base carries the training flag shared by every module. Modules embed it
// and constructors start it in training mode.
type base struct {
	training bool
}

func newBase() base {
	return base{training: true}
}

// Training reports whether the module is in training mode.
func (b *base) Training() bool {
	return b.training
}

// SetTraining sets the module's own mode flag.
func (b *base) SetTraining(training bool) {
	b.training = training
}

// Parameters returns every parameter reachable from m's attributes,
// flattened in declaration order. A parameter reachable through several
// paths is returned once per path; optimizers are expected to de-duplicate
// by identity if they need to.
func Parameters[B tensor.Backend](m Module[B]) []*Parameter[B] {
	var params []*Parameter[B]
	for _, attr := range m.Attributes() {
		params = appendParams(params, attr.Value)
	}
	return params
}

func appendParams[B tensor.Backend](dst []*Parameter[B], v Value[B]) []*Parameter[B] {
	switch v := v.(type) {
	case paramValue[B]:
		return append(dst, v.p)
	case childValue[B]:
		for _, attr := range v.m.Attributes() {
			dst = appendParams(dst, attr.Value)
		}
		return dst
	case listValue[B]:
		for _, item := range v.items {
			dst = appendParams(dst, item)
		}
		return dst
	case dictValue[B]:
		for _, entry := range v.entries {
			dst = appendParams(dst, entry.Value)
		}
		return dst
	default:
		return dst
	}
}

// Modules returns m followed by every module reachable from its attributes,
// in preorder.
func Modules[B tensor.Backend](m Module[B]) []Module[B] {
	modules := []Module[B]{m}
	for _, attr := range m.Attributes() {
		modules = appendModules(modules, attr.Value)
	}
	return modules
}

func appendModules[B tensor.Backend](dst []Module[B], v Value[B]) []Module[B] {
	switch v := v.(type) {
	case childValue[B]:
		dst = append(dst, v.m)
		for _, attr := range v.m.Attributes() {
			dst = appendModules(dst, attr.Value)
		}
		return dst
	case listValue[B]:
		for _, item := range v.items {
			dst = appendModules(dst, item)
		}
		return dst
	case dictValue[B]:
		for _, entry := range v.entries {
			dst = appendModules(dst, entry.Value)
		}
		return dst
	default:
		return dst
	}
}

// Train puts m and every module reachable from it into training mode.
// The effect is total: afterwards every reachable module reports
// Training() == true regardless of its previous state.
func Train[B tensor.Backend](m Module[B]) {
	for _, child := range Modules(m) {
		child.SetTraining(true)
	}
}

// Eval puts m and every module reachable from it into evaluation mode.
func Eval[B tensor.Backend](m Module[B]) {
	for _, child := range Modules(m) {
		child.SetTraining(false)
	}
}
