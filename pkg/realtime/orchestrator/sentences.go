package orchestrator

import (
	"strings"
	"unicode"
)

// sentenceSplitter cuts streamed text at sentence boundaries so synthesis can
// start before generation finishes.
type sentenceSplitter struct {
	buf strings.Builder
}

// Push appends delta and returns every sentence completed by it. A
// terminator only counts once the following rune is known to be a space.
func (s *sentenceSplitter) Push(delta string) []string {
	s.buf.WriteString(delta)
	text := s.buf.String()

	var out []string
	start := 0
	runes := []rune(text)
	offset := 0
	for i, r := range runes {
		size := len(string(r))
		if isTerminator(r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			end := offset + size
			if sentence := strings.TrimSpace(text[start:end]); sentence != "" {
				out = append(out, sentence)
			}
			start = end
		}
		offset += size
	}
	s.buf.Reset()
	s.buf.WriteString(text[start:])
	return out
}

// Flush returns whatever text is left.
func (s *sentenceSplitter) Flush() string {
	rest := strings.TrimSpace(s.buf.String())
	s.buf.Reset()
	return rest
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '\n', '。', '！', '？':
		return true
	}
	return false
}
