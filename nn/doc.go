// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network modules on top of the Born tensor
// engine.
//
// # Overview
//
// This package contains:
//   - Module system: Module interface, Parameter, attribute traversal
//   - Layers: Linear, Conv, Embedding, BatchNorm1d/2d, LayerNorm1d
//   - Recurrent: RNNCell, RNN, LSTMCell, LSTM
//   - Activations: ReLU, Sigmoid, Tanh
//   - Composition: Sequential, Residual, Flatten, Identity, Dropout
//   - Loss: SoftmaxLoss
//   - Serialization: StateDict, LoadStateDict
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/born/backend/cpu"
//	    "github.com/born-ml/weave/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // Build a simple MLP
//	    model := nn.NewSequential(
//	        nn.Layer[*cpu.Backend](nn.NewLinear(784, 128, true, backend)),
//	        nn.Layer[*cpu.Backend](nn.NewReLU[*cpu.Backend]()),
//	        nn.Layer[*cpu.Backend](nn.NewLinear(128, 10, true, backend)),
//	    )
//
//	    // Forward pass
//	    output := model.Forward(input)
//	}
//
// # Module Discovery
//
// Every module exposes its trainable state as an ordered attribute list.
// Free functions walk that list generically:
//
//	params := nn.Parameters(model)  // flattened, declaration order
//	nn.Train(model)                 // training mode, whole tree
//	nn.Eval(model)                  // evaluation mode, whole tree
//
// # Serialization
//
// StateDict maps dotted attribute paths to raw tensors:
//
//	sd := nn.StateDict(model)
//	err := nn.LoadStateDict(model2, sd)
package nn
