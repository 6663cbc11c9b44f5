package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RecursiveChunker creates a chunker that splits text on the first separator found in it
// and recursively splits pieces that are still too long with the remaining separators.
// Small pieces are merged into chunks of at most chunkSize characters, consecutive
// chunks share up to chunkOverlap characters. Sizes are counted in runes.
// A piece without any remaining separator is kept whole even if it is longer than chunkSize.
func RecursiveChunker(chunkSize int, chunkOverlap int, separators []string) ChunkFunc {
	return func(text string) ([]string, error) {
		if chunkSize <= 0 {
			return nil, fmt.Errorf("chunk size must be positive")
		}
		if chunkOverlap < 0 || chunkOverlap >= chunkSize {
			return nil, fmt.Errorf("chunk overlap must be at least 0 and smaller than chunk size %d, got %d", chunkSize, chunkOverlap)
		}
		if len(separators) == 0 {
			return nil, fmt.Errorf("at least one separator is required")
		}

		if strings.TrimSpace(text) == "" {
			return []string{}, nil
		}

		s := &recursiveSplitter{
			chunkSize:    chunkSize,
			chunkOverlap: chunkOverlap,
		}
		return s.split(text, separators), nil
	}
}

type recursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
}

func (s *recursiveSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	chunks := []string{}
	good := []string{}
	for _, piece := range splitKeepSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}

		if len(good) > 0 {
			chunks = append(chunks, s.merge(good)...)
			good = []string{}
		}

		if len(remaining) == 0 {
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
		} else {
			chunks = append(chunks, s.split(piece, remaining)...)
		}
	}

	if len(good) > 0 {
		chunks = append(chunks, s.merge(good)...)
	}

	return chunks
}

// merge joins pieces into chunks, carrying the tail of a chunk into the next one as overlap
func (s *recursiveSplitter) merge(pieces []string) []string {
	chunks := []string{}
	current := []string{}
	total := 0

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}

			for total > s.chunkOverlap || (total+n > s.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}

		current = append(current, piece)
		total += n
	}

	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// splitKeepSeparator splits text on separator, the separator stays at the start of the following piece.
// An empty separator splits into single characters.
func splitKeepSeparator(text string, separator string) []string {
	if separator == "" {
		pieces := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, separator)
	pieces := make([]string, 0, len(parts))
	if parts[0] != "" {
		pieces = append(pieces, parts[0])
	}
	for _, p := range parts[1:] {
		pieces = append(pieces, separator+p)
	}
	return pieces
}
