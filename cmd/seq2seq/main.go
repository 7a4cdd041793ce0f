// Command seq2seq builds and runs the encoder-decoder model from the command
// line.
//
// Usage:
//
//	seq2seq config                      # Print the effective configuration
//	seq2seq forward --batch 2           # Teacher-forced pass on a random batch
//	seq2seq translate "hello world"     # Tokenize and greedily decode
package main

import "github.com/born-ml/seq2seq/cmd/seq2seq/cmd"

// Set by the release build via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd.Version = version
	cmd.Execute()
}
