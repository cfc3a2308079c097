package nn

import (
	"testing"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Backend = *cpu.Backend

// mustFromSlice builds a tensor from data or fails the test.
func mustFromSlice(t *testing.T, data []float32, shape tensor.Shape, backend Backend) *tensor.Tensor[float32, Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, backend)
	require.NoError(t, err)
	return x
}

// setParam overwrites a parameter's data in place.
func setParam(t *testing.T, p *Parameter[Backend], data []float32) {
	t.Helper()
	require.Len(t, data, len(p.Tensor().Data()), "setParam data length mismatch")
	copy(p.Tensor().Data(), data)
}

// aliasedModule exposes the same parameter under two attribute names.
type aliasedModule struct {
	base
	p *Parameter[Backend]
}

func (m *aliasedModule) Attributes() []Attr[Backend] {
	return []Attr[Backend]{
		{Name: "first", Value: Param(m.p)},
		{Name: "second", Value: Param(m.p)},
	}
}

// containerModule mixes parameter, dict and list attributes.
type containerModule struct {
	base
	own    *Parameter[Backend]
	blocks []*Linear[Backend]
	heads  []Entry[Backend]
}

func (m *containerModule) Attributes() []Attr[Backend] {
	items := make([]Value[Backend], len(m.blocks))
	for i, b := range m.blocks {
		items[i] = Child[Backend](b)
	}
	return []Attr[Backend]{
		{Name: "own", Value: Param(m.own)},
		{Name: "blocks", Value: List(items...)},
		{Name: "heads", Value: Dict(m.heads...)},
		{Name: "note", Value: Opaque[Backend]("not trainable")},
	}
}

// TestParameters_DeclarationOrder tests that parameter discovery flattens
// nested modules in declaration order.
func TestParameters_DeclarationOrder(t *testing.T) {
	backend := cpu.New()

	model := NewSequential(
		Layer[Backend](NewLinear(2, 3, true, backend)),
		Layer[Backend](NewReLU[Backend]()),
		Layer[Backend](NewLinear(3, 1, false, backend)),
	)

	params := Parameters[Backend](model)
	require.Len(t, params, 3)

	assert.Equal(t, "weight", params[0].Name())
	assert.Equal(t, "bias", params[1].Name())
	assert.Equal(t, "weight", params[2].Name())

	assert.Equal(t, []int{2, 3}, []int(params[0].Tensor().Shape()))
	assert.Equal(t, []int{1, 3}, []int(params[1].Tensor().Shape()))
	assert.Equal(t, []int{3, 1}, []int(params[2].Tensor().Shape()))
}

// TestParameters_AliasedParamAppearsPerPath tests that a parameter reachable
// through two attribute paths is reported once per path.
func TestParameters_AliasedParamAppearsPerPath(t *testing.T) {
	backend := cpu.New()

	shared := NewParameter("shared", tensor.Randn[float32](tensor.Shape{2, 2}, backend))
	m := &aliasedModule{base: newBase(), p: shared}

	params := Parameters[Backend](m)
	require.Len(t, params, 2)
	assert.Same(t, params[0], params[1])
}

// TestParameters_Containers tests discovery through list and dict attributes
// and that opaque attributes contribute nothing.
func TestParameters_Containers(t *testing.T) {
	backend := cpu.New()

	m := &containerModule{
		base: newBase(),
		own:  NewParameter("own", tensor.Randn[float32](tensor.Shape{4}, backend)),
		blocks: []*Linear[Backend]{
			NewLinear(4, 4, false, backend),
			NewLinear(4, 4, false, backend),
		},
		heads: []Entry[Backend]{
			{Key: "policy", Value: Child[Backend](NewLinear(4, 2, false, backend))},
			{Key: "value", Value: Child[Backend](NewLinear(4, 1, false, backend))},
		},
	}

	params := Parameters[Backend](m)
	require.Len(t, params, 5)

	// own, blocks[0].weight, blocks[1].weight, heads.policy.weight, heads.value.weight
	assert.Equal(t, "own", params[0].Name())
	assert.Equal(t, []int{4, 2}, []int(params[3].Tensor().Shape()))
	assert.Equal(t, []int{4, 1}, []int(params[4].Tensor().Shape()))
}

// TestModules_Preorder tests that Modules returns the root first, then
// children in declaration order.
func TestModules_Preorder(t *testing.T) {
	backend := cpu.New()

	inner := NewSequential(
		Layer[Backend](NewLinear(2, 2, false, backend)),
	)
	outer := NewSequential(
		Layer[Backend](NewReLU[Backend]()),
		Layer[Backend](inner),
	)

	modules := Modules[Backend](outer)
	require.Len(t, modules, 4)

	assert.Same(t, Module[Backend](outer), modules[0])
	assert.IsType(t, &ReLU[Backend]{}, modules[1])
	assert.Same(t, Module[Backend](inner), modules[2])
	assert.IsType(t, &Linear[Backend]{}, modules[3])
}

// TestTrainEval_Totality tests that mode propagation overrides mixed
// per-module states.
func TestTrainEval_Totality(t *testing.T) {
	backend := cpu.New()

	model := NewSequential(
		Layer[Backend](NewLinear(2, 2, false, backend)),
		Layer[Backend](NewDropout[Backend](0.5)),
		Layer[Backend](NewLinear(2, 2, false, backend)),
	)

	// Every constructor starts in training mode.
	for _, m := range Modules[Backend](model) {
		assert.True(t, m.Training())
	}

	// Desynchronize one module, then propagate.
	model.Layer(1).SetTraining(false)

	Eval[Backend](model)
	for _, m := range Modules[Backend](model) {
		assert.False(t, m.Training())
	}

	Train[Backend](model)
	for _, m := range Modules[Backend](model) {
		assert.True(t, m.Training())
	}
}

// TestParameter_Grad tests grad assignment and clearing.
func TestParameter_Grad(t *testing.T) {
	backend := cpu.New()

	p := NewParameter("weight", tensor.Randn[float32](tensor.Shape{3}, backend))
	assert.Nil(t, p.Grad())

	g := tensor.Ones[float32](tensor.Shape{3}, backend)
	p.SetGrad(g)
	assert.Same(t, g, p.Grad())

	p.ZeroGrad()
	assert.Nil(t, p.Grad())
}
