package tokenizer

// Tokenizer converts between text and model token ids.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text. Special tokens are skipped.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the total vocabulary size, specials included.
	VocabSize() int

	// BosToken returns the id fed to the decoder at the first step.
	BosToken() int32

	// EosToken returns the id that ends a sequence.
	EosToken() int32

	// PadToken returns the id used to right-pad batches.
	PadToken() int32

	// UnkToken returns the id of pieces missing from the vocabulary.
	UnkToken() int32

	// IsSpecialToken checks if a token ID is a special token.
	IsSpecialToken(token int32) bool
}

// PreTokenizer splits text into pieces whose concatenation is the text.
type PreTokenizer interface {
	Split(text string) ([]string, error)
}
