package nn

import (
	"fmt"
	"strconv"

	"github.com/born-ml/born/tensor"
)

// StateDict exports every parameter reachable from m as a map of dotted
// attribute paths to raw tensors. Path segments are attribute names, list
// indices and dict keys, so a parameter held by the first cell of a
// recurrent stack appears as "cells.0.W_ih". Opaque attributes are never
// serialized.
//
// The raw tensors share storage with the live parameters.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	walkParams(m, func(path string, p *Parameter[B]) {
		stateDict[path] = p.Tensor().Raw()
	})
	return stateDict
}

// LoadStateDict copies parameter data from a state dictionary into m.
// Every parameter reachable from m must be present under its dotted path
// with matching dtype and shape; extra entries are ignored. Data is copied
// in place, so existing autodiff graph references to the parameter tensors
// stay valid.
func LoadStateDict[B tensor.Backend](m Module[B], stateDict map[string]*tensor.RawTensor) error {
	var err error
	walkParams(m, func(path string, p *Parameter[B]) {
		if err != nil {
			return
		}
		err = loadParam(path, p, stateDict)
	})
	return err
}

func loadParam[B tensor.Backend](path string, p *Parameter[B], stateDict map[string]*tensor.RawTensor) error {
	raw, ok := stateDict[path]
	if !ok {
		return fmt.Errorf("missing %s in state dict", path)
	}

	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", path, raw.DType())
	}

	expected := p.Tensor().Shape()
	if !raw.Shape().Equal(expected) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", path, expected, raw.Shape())
	}

	copy(p.Tensor().Data(), raw.AsFloat32())
	return nil
}

// walkParams visits every reachable parameter with its dotted path, in
// declaration order.
func walkParams[B tensor.Backend](m Module[B], visit func(path string, p *Parameter[B])) {
	for _, attr := range m.Attributes() {
		walkValue(attr.Name, attr.Value, visit)
	}
}

func walkValue[B tensor.Backend](path string, v Value[B], visit func(path string, p *Parameter[B])) {
	switch v := v.(type) {
	case paramValue[B]:
		visit(path, v.p)
	case childValue[B]:
		for _, attr := range v.m.Attributes() {
			walkValue(path+"."+attr.Name, attr.Value, visit)
		}
	case listValue[B]:
		for i, item := range v.items {
			walkValue(path+"."+strconv.Itoa(i), item, visit)
		}
	case dictValue[B]:
		for _, entry := range v.entries {
			walkValue(path+"."+entry.Key, entry.Value, visit)
		}
	}
}
