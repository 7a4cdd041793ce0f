package tokenizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordSplitter splits on single spaces and drops them.
type wordSplitter struct{ err error }

func (w wordSplitter) Split(text string) ([]string, error) {
	if w.err != nil {
		return nil, w.err
	}
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, " "), nil
}

func TestNewVocabulary(t *testing.T) {
	v := NewVocabulary(wordSplitter{}, []string{"hello", "world", "hello"})

	assert.Equal(t, 6, v.VocabSize())
	assert.Equal(t, "<pad>", v.Piece(PadID))
	assert.Equal(t, "<sos>", v.Piece(StartID))
	assert.Equal(t, "<eos>", v.Piece(EndID))
	assert.Equal(t, "<unk>", v.Piece(UnkID))
	assert.Equal(t, "hello", v.Piece(4))
	assert.Equal(t, "world", v.Piece(5))
	assert.Equal(t, "", v.Piece(6))

	assert.Equal(t, PadID, v.PadToken())
	assert.Equal(t, StartID, v.BosToken())
	assert.Equal(t, EndID, v.EosToken())
	assert.Equal(t, UnkID, v.UnkToken())
	assert.True(t, v.IsSpecialToken(3))
	assert.False(t, v.IsSpecialToken(4))

	var _ Tokenizer = v
}

func TestVocabulary_EncodeDecode(t *testing.T) {
	v := NewVocabulary(wordSplitter{}, []string{"hello", "world"})

	ids, err := v.Encode("hello there world <pad>")
	require.NoError(t, err)
	assert.Equal(t, []int32{4, UnkID, 5, UnkID}, ids)

	text, err := v.Decode([]int32{StartID, 4, 5, EndID, PadID})
	require.NoError(t, err)
	assert.Equal(t, "helloworld", text)

	_, err = v.Decode([]int32{9})
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestVocabulary_EncodeSplitError(t *testing.T) {
	boom := errors.New("boom")
	v := NewVocabulary(wordSplitter{err: boom}, nil)
	_, err := v.Encode("x")
	assert.ErrorIs(t, err, boom)
}

func TestBuildVocabulary(t *testing.T) {
	corpus := []string{"b a c", "a b", "a d"}

	v, err := BuildVocabulary(wordSplitter{}, corpus, 0)
	require.NoError(t, err)
	// a:3, b:2, then c and d tie at 1 and sort bytewise.
	assert.Equal(t, []string{"a", "b", "c", "d"}, []string{v.Piece(4), v.Piece(5), v.Piece(6), v.Piece(7)})

	small, err := BuildVocabulary(wordSplitter{}, corpus, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, small.VocabSize())
	ids, err := small.Encode("a b c")
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 5, UnkID}, ids)

	_, err = BuildVocabulary(wordSplitter{}, corpus, 4)
	assert.Error(t, err)
}

func TestBuildVocabulary_TikToken(t *testing.T) {
	pre, err := NewTikToken("cl100k_base")
	require.NoError(t, err)

	v, err := BuildVocabulary(pre, []string{"the cat sat", "the dog sat"}, 0)
	require.NoError(t, err)

	ids, err := v.Encode("the dog sat")
	require.NoError(t, err)
	require.Len(t, ids, 3)
	for _, id := range ids {
		assert.False(t, v.IsSpecialToken(id))
	}

	text, err := v.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, "the dog sat", text)
}

func TestPadBatch(t *testing.T) {
	batch, err := PadBatch([][]int32{{5, 3, 2}, {7, 8}}, PadID)
	require.NoError(t, err)

	assert.Equal(t, []int32{5, 3, 2, 7, 8, 0}, batch.IDs)
	assert.Equal(t, []int{3, 2}, batch.Lengths)
	assert.Equal(t, 3, batch.MaxLen)
	assert.Equal(t, []int{2, 3}, batch.Shape())

	_, err = PadBatch(nil, PadID)
	assert.Error(t, err)
	_, err = PadBatch([][]int32{{1}, {}}, PadID)
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []int32{StartID, 4, 6, EndID}, Wrap([]int32{4, 6}, StartID, EndID))
	assert.Equal(t, []int32{StartID, EndID}, Wrap(nil, StartID, EndID))
}
