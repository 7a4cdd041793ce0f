// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public tensor API of the seq2seq module.
//
// Tensor[T, B] is a typed view over a RawTensor whose operations are carried
// out by a Backend. Wrapping a backend with autodiff.New records every
// operation for gradient computation without changing model code.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
package tensor
