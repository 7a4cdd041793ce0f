// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend for tensor operations.
//
// # Overview
//
// The backend works on contiguous row-major float32 buffers with
// NumPy-style broadcasting. Matrix products run through gonum's BLAS and
// batched products fan out over the batch axis.
//
// # Basic Usage
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
//
//	// Gradients: wrap the backend.
//	train := autodiff.New(backend)
//
// # Thread Safety
//
// Operations never mutate their inputs, so one backend can serve several
// goroutines. Tensors and models built on it are not synchronized.
package cpu
