package ingest

import (
	"iter"
	"unicode/utf8"
)

// DefaultChunkSize is the chunk length, in characters, used when none is given.
const DefaultChunkSize = 50000

// Chunks splits text into consecutive pieces of at most size characters.
// The sequence can be ranged over any number of times; joining its values
// reproduces text exactly.
func Chunks(text string, size int) iter.Seq[string] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func(string) bool) {
		start := 0
		for start < len(text) {
			end := start
			for n := 0; n < size && end < len(text); n++ {
				_, w := utf8.DecodeRuneInString(text[end:])
				end += w
			}
			if !yield(text[start:end]) {
				return
			}
			start = end
		}
	}
}

// CountChunks returns how many values Chunks yields for text and size.
func CountChunks(text string, size int) int {
	if size <= 0 {
		size = DefaultChunkSize
	}
	n := utf8.RuneCountInString(text)
	return (n + size - 1) / size
}
