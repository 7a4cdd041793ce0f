package tokenizer

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Reserved ids shared by every Vocabulary.
const (
	PadID   int32 = 0
	StartID int32 = 1
	EndID   int32 = 2
	UnkID   int32 = 3
)

var specialPieces = []string{"<pad>", "<sos>", "<eos>", "<unk>"}

// ErrUnknownID is returned by Decode for ids outside the vocabulary.
var ErrUnknownID = errors.New("token id outside vocabulary")

// Vocabulary maps pre-tokenized pieces to compact ids. Ids 0-3 are the
// special tokens <pad>, <sos>, <eos> and <unk>.
type Vocabulary struct {
	pre    PreTokenizer
	ids    map[string]int32
	pieces []string
}

// NewVocabulary creates a vocabulary holding the special tokens followed by
// pieces in order. Duplicate pieces keep their first id.
func NewVocabulary(pre PreTokenizer, pieces []string) *Vocabulary {
	v := &Vocabulary{
		pre: pre,
		ids: make(map[string]int32, len(specialPieces)+len(pieces)),
	}
	for _, p := range specialPieces {
		v.add(p)
	}
	for _, p := range pieces {
		v.add(p)
	}
	return v
}

// BuildVocabulary collects the pieces of corpus, most frequent first (ties
// in byte order), and keeps at most maxSize entries including the special
// tokens. maxSize <= 0 keeps every piece.
func BuildVocabulary(pre PreTokenizer, corpus []string, maxSize int) (*Vocabulary, error) {
	if maxSize > 0 && maxSize <= len(specialPieces) {
		return nil, fmt.Errorf("vocabulary size %d leaves no room beyond %d special tokens", maxSize, len(specialPieces))
	}

	counts := make(map[string]int)
	for i, text := range corpus {
		pieces, err := pre.Split(text)
		if err != nil {
			return nil, fmt.Errorf("split corpus line %d: %w", i, err)
		}
		for _, p := range pieces {
			counts[p]++
		}
	}

	pieces := make([]string, 0, len(counts))
	for p := range counts {
		if !slices.Contains(specialPieces, p) {
			pieces = append(pieces, p)
		}
	}
	slices.SortFunc(pieces, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if maxSize > 0 && len(pieces) > maxSize-len(specialPieces) {
		pieces = pieces[:maxSize-len(specialPieces)]
	}
	return NewVocabulary(pre, pieces), nil
}

func (v *Vocabulary) add(piece string) {
	if _, ok := v.ids[piece]; ok {
		return
	}
	v.ids[piece] = int32(len(v.pieces)) //nolint:gosec // G115: vocabulary size < 2^31.
	v.pieces = append(v.pieces, piece)
}

// Encode splits text and maps each piece to its id, UnkID when missing.
func (v *Vocabulary) Encode(text string) ([]int32, error) {
	pieces, err := v.pre.Split(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}
	ids := make([]int32, len(pieces))
	for i, p := range pieces {
		id, ok := v.ids[p]
		if !ok || v.IsSpecialToken(id) {
			id = UnkID
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode joins the pieces of tokens, skipping special tokens.
func (v *Vocabulary) Decode(tokens []int32) (string, error) {
	var sb strings.Builder
	for _, id := range tokens {
		if id < 0 || int(id) >= len(v.pieces) {
			return "", fmt.Errorf("decode id %d: %w", id, ErrUnknownID)
		}
		if v.IsSpecialToken(id) {
			continue
		}
		sb.WriteString(v.pieces[id])
	}
	return sb.String(), nil
}

// VocabSize returns the number of ids, special tokens included.
func (v *Vocabulary) VocabSize() int { return len(v.pieces) }

// BosToken returns StartID.
func (v *Vocabulary) BosToken() int32 { return StartID }

// EosToken returns EndID.
func (v *Vocabulary) EosToken() int32 { return EndID }

// PadToken returns PadID.
func (v *Vocabulary) PadToken() int32 { return PadID }

// UnkToken returns UnkID.
func (v *Vocabulary) UnkToken() int32 { return UnkID }

// IsSpecialToken reports whether token is one of the reserved ids.
func (v *Vocabulary) IsSpecialToken(token int32) bool {
	return token >= 0 && int(token) < len(specialPieces)
}

// Piece returns the text of id, or "" when id is out of range.
func (v *Vocabulary) Piece(id int32) string {
	if id < 0 || int(id) >= len(v.pieces) {
		return ""
	}
	return v.pieces[id]
}
