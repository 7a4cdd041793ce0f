package tokenizer

import "fmt"

// Batch is a right-padded block of token sequences, row-major
// [len(Lengths), MaxLen].
type Batch struct {
	IDs     []int32
	Lengths []int
	MaxLen  int
}

// Shape returns [batch, MaxLen].
func (b Batch) Shape() []int {
	return []int{len(b.Lengths), b.MaxLen}
}

// PadBatch right-pads seqs with pad to the longest sequence. Every sequence
// must be non-empty.
func PadBatch(seqs [][]int32, pad int32) (Batch, error) {
	if len(seqs) == 0 {
		return Batch{}, fmt.Errorf("pad batch: no sequences")
	}

	maxLen := 0
	lengths := make([]int, len(seqs))
	for i, s := range seqs {
		if len(s) == 0 {
			return Batch{}, fmt.Errorf("pad batch: sequence %d is empty", i)
		}
		lengths[i] = len(s)
		maxLen = max(maxLen, len(s))
	}

	ids := make([]int32, len(seqs)*maxLen)
	for i, s := range seqs {
		row := ids[i*maxLen : (i+1)*maxLen]
		n := copy(row, s)
		for j := n; j < maxLen; j++ {
			row[j] = pad
		}
	}
	return Batch{IDs: ids, Lengths: lengths, MaxLen: maxLen}, nil
}

// Wrap returns ids framed by start and end markers, as decoder targets are.
func Wrap(ids []int32, start, end int32) []int32 {
	out := make([]int32, 0, len(ids)+2)
	out = append(out, start)
	out = append(out, ids...)
	return append(out, end)
}
