package splitter

import (
	"strings"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// separators in order of preference: paragraph, line, word, character.
var separators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks document text into overlapping chunks for embedding
// and triple extraction. Splits prefer paragraph boundaries and degrade
// toward character boundaries only when a segment will not fit.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a splitter with the given chunk size and overlap
// in characters. Non-positive values fall back to the defaults.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split breaks text into chunks of at most the configured size with the
// configured overlap between consecutive chunks. Whitespace-only input
// yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, separators)
}

func (s *Splitter) split(text string, seps []string) []string {
	sep := ""
	var nextSeps []string
	for i, candidate := range seps {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			nextSeps = seps[i+1:]
			break
		}
	}

	var segments []string
	if sep == "" {
		segments = splitRunes(text, s.chunkSize)
	} else {
		segments = strings.Split(text, sep)
	}

	// Segments that fit get merged into overlapping chunks; oversized
	// segments recurse with the finer separators first.
	var chunks []string
	var merged []string
	for _, segment := range segments {
		if len(segment) <= s.chunkSize {
			merged = append(merged, segment)
			continue
		}
		chunks = append(chunks, s.merge(merged, sep)...)
		merged = nil
		chunks = append(chunks, s.split(segment, nextSeps)...)
	}
	chunks = append(chunks, s.merge(merged, sep)...)

	return chunks
}

// merge joins consecutive segments into chunks of at most chunkSize,
// carrying chunkOverlap characters of trailing segments into the next
// chunk.
func (s *Splitter) merge(segments []string, sep string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, segment := range segments {
		segLen := len(segment) + len(sep)

		if total+segLen > s.chunkSize && len(window) > 0 {
			chunk := strings.TrimSpace(strings.Join(window, sep))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.chunkOverlap || (total+segLen > s.chunkSize && total > 0) {
				total -= len(window[0]) + len(sep)
				window = window[1:]
			}
		}

		window = append(window, segment)
		total += segLen
	}

	if len(window) > 0 {
		chunk := strings.TrimSpace(strings.Join(window, sep))
		if chunk != "" && (len(chunks) == 0 || chunk != chunks[len(chunks)-1]) {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}

// splitRunes cuts text into size-bounded pieces at rune boundaries.
func splitRunes(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
