package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the tiktoken encoding used when none is named.
const DefaultEncoding = "cl100k_base"

func init() {
	// Embedded BPE ranks: no network access on first use.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TikToken splits text into OpenAI BPE pieces.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo
//   - o200k_base: GPT-4o
//   - p50k_base: Codex
//   - r50k_base: GPT-3
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken loads the named encoding. An empty name selects
// DefaultEncoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: encoding, name: encodingName}, nil
}

// Split returns one piece per BPE token. Pieces hold raw bytes, so a
// multi-byte character may span several of them.
func (t *TikToken) Split(text string) ([]string, error) {
	ranks := t.encoding.Encode(text, nil, nil)
	pieces := make([]string, len(ranks))
	for i, rank := range ranks {
		pieces[i] = t.encoding.Decode([]int{rank})
	}
	return pieces, nil
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
