// Package seq2seq implements an encoder-decoder network with additive
// (Bahdanau) attention and a generator tied to the target embedding.
//
// Components, leaf first:
//   - ReshapeState: folds a bidirectional encoder state for the decoder
//   - BahdanauAttention: masked additive attention over encoder outputs
//   - Encoder: embedding + bidirectional LSTM over valid timesteps only
//   - Decoder: embedding + dropout + stepwise LSTM, optionally attending
//   - Model: encoder, decoder and weight-tied output projection
//
// Example usage:
//
//	backend := cpu.New()
//	model, err := seq2seq.New(seq2seq.DefaultConfig(), backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logits, state := model.Forward(src, srcLengths, tgt, nil, nn.Eval)
//	// Continue decoding from where the last call stopped.
//	next, _ := model.Forward(src, srcLengths, step, &state, nn.Eval)
package seq2seq
