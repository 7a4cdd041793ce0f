// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/seq2seq/internal/tensor"

// Backend executes tensor operations on RawTensors.
//
// Implementations:
//   - backend/cpu: pure Go, gonum BLAS for matrix products
//
// Decorator backends:
//   - autodiff: records operations for reverse-mode differentiation
type Backend = tensor.Backend
