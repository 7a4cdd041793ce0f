// Package tokenizer turns text into padded token id batches.
//
// Example usage:
//
//	pre, err := tokenizer.NewTikToken("cl100k_base")
//	vocab, err := tokenizer.BuildVocabulary(pre, corpus, 8000)
//	ids, err := vocab.Encode("Hello, world!")
//	batch, err := tokenizer.PadBatch([][]int32{ids}, vocab.PadToken())
package tokenizer

import (
	"github.com/born-ml/seq2seq/internal/tokenizer"
)

// Tokenizer converts between text and token ids.
type Tokenizer = tokenizer.Tokenizer

// PreTokenizer splits text into pieces.
type PreTokenizer = tokenizer.PreTokenizer

// TikToken splits text into OpenAI BPE pieces.
type TikToken = tokenizer.TikToken

// DefaultEncoding is the tiktoken encoding used when none is named.
const DefaultEncoding = tokenizer.DefaultEncoding

// NewTikToken loads a tiktoken encoding ("cl100k_base", "p50k_base", ...).
// Ranks are embedded; no network access is needed.
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// Vocabulary maps pieces to compact ids with reserved special tokens.
type Vocabulary = tokenizer.Vocabulary

// Reserved ids.
const (
	PadID   = tokenizer.PadID
	StartID = tokenizer.StartID
	EndID   = tokenizer.EndID
	UnkID   = tokenizer.UnkID
)

// ErrUnknownID is returned when decoding ids outside the vocabulary.
var ErrUnknownID = tokenizer.ErrUnknownID

// NewVocabulary creates a vocabulary from an explicit piece list.
func NewVocabulary(pre PreTokenizer, pieces []string) *Vocabulary {
	return tokenizer.NewVocabulary(pre, pieces)
}

// BuildVocabulary collects the most frequent pieces of corpus.
func BuildVocabulary(pre PreTokenizer, corpus []string, maxSize int) (*Vocabulary, error) {
	return tokenizer.BuildVocabulary(pre, corpus, maxSize)
}

// Batch is a right-padded block of token sequences.
type Batch = tokenizer.Batch

// PadBatch right-pads seqs to the longest one.
func PadBatch(seqs [][]int32, pad int32) (Batch, error) {
	return tokenizer.PadBatch(seqs, pad)
}

// Wrap frames ids with start and end markers.
func Wrap(ids []int32, start, end int32) []int32 {
	return tokenizer.Wrap(ids, start, end)
}
