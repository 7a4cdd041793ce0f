// Package tokenizer turns text into the token id sequences a seq2seq model
// consumes.
//
// Text is first split into pieces by a PreTokenizer (tiktoken BPE by
// default). A Vocabulary then maps pieces to compact ids with reserved
// special tokens, and PadBatch right-pads encoded sequences into a
// rectangular batch plus per-example lengths.
//
// Example usage:
//
//	pre, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vocab, err := tokenizer.BuildVocabulary(pre, corpus, 8000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, err := vocab.Encode("Hello, world!")
//	batch, err := tokenizer.PadBatch([][]int32{ids}, vocab.PadToken())
package tokenizer
