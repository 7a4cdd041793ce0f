// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seq2seq/backend/cpu"
	"github.com/born-ml/seq2seq/tensor"
)

func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 3}, raw.Shape())
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, 6, raw.NumElements())
}

func TestTensorAPI(t *testing.T) {
	backend := cpu.New()
	x := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	y := tensor.Ones(tensor.Shape{2, 2}, backend)

	z := tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{x.Add(y), tensor.Zeros[float32](tensor.Shape{1, 2}, backend)}, 0)
	assert.Equal(t, tensor.Shape{3, 2}, z.Shape())
	assert.Equal(t, []float32{2, 3, 4, 5, 0, 0}, z.Data())

	ids := tensor.Full[int32](tensor.Shape{2}, 7, backend)
	assert.Equal(t, []int32{7, 7}, ids.Data())

	_, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend)
	assert.Error(t, err)
}
