package seq2seq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/seq2seq/internal/backend/cpu"
	"github.com/born-ml/seq2seq/internal/tensor"
)

func TestPaddingMaskComplementsSequenceMask(t *testing.T) {
	backend := cpu.New()
	lengths := []int{3, 1, 4}

	valid := SequenceMask(lengths, 4, backend).Data()
	padding := paddingMask(lengths, 4, backend)

	assert.Equal(t, tensor.Shape{3, 1, 4}, padding.Shape())
	assert.Equal(t, []bool{
		false, false, false, true,
		false, true, true, true,
		false, false, false, false,
	}, padding.Data())
	for i, v := range valid {
		assert.NotEqual(t, v, padding.Data()[i], "position %d", i)
	}
}
