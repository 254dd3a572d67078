// Package baseline implements the deterministic, sub-millisecond completion
// pipeline: UTF-16 cursor framing, ASCII token-prefix extraction, trie
// lookup, confidence gating, and mixed-script spacing.
package baseline

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/aetherime/shurufa/trie"
)

// Suggestor runs the baseline completion pipeline against a shared,
// read-only trie. Safe for concurrent use by any number of connections.
type Suggestor struct {
	tr *trie.Trie
}

// New creates a Suggestor backed by tr. tr must not be mutated afterward.
func New(tr *trie.Trie) *Suggestor {
	return &Suggestor{tr: tr}
}

// Result is the outcome of a completion pipeline run.
type Result struct {
	Suggestion   string
	Confidence   float64
	ReplaceStart int
	ReplaceEnd   int
}

const (
	minTokenLen      = 2
	minConfidence    = 0.50
	confidencePerCh  = 0.02
	confidenceCeil   = 0.99
	cjkRangeStart    = 0x4E00
	cjkRangeEnd      = 0x9FFF
)

// Suggest runs the full pipeline described in §4.1 of the specification:
// clamp the UTF-16 cursor, extract the trailing ASCII token, look up the
// best trie completion, gate on confidence, and apply mixed-script spacing.
func (s *Suggestor) Suggest(context string, cursorUTF16 int, maxLen int) Result {
	units := utf16.Encode([]rune(context))
	if cursorUTF16 < 0 {
		cursorUTF16 = 0
	}
	if cursorUTF16 > len(units) {
		cursorUTF16 = len(units)
	}

	before := string(utf16.Decode(units[:cursorUTF16]))

	token, tokenLen := lastASCIITokenPrefix(before)
	empty := Result{ReplaceStart: cursorUTF16, ReplaceEnd: cursorUTF16}
	if token == "" {
		return empty
	}

	word, freq, ok := s.tr.BestCompletion(strings.ToLower(token))
	if !ok || len(word) < tokenLen {
		return empty
	}

	suffix := word[tokenLen:]
	if maxLen >= 0 && len(suffix) > maxLen {
		suffix = suffix[:maxLen]
	}

	confidence := 1 - 1/float64(freq+1)
	confidence = confidence + confidencePerCh*float64(tokenLen)
	if confidence > confidenceCeil {
		confidence = confidenceCeil
	}

	if tokenLen < minTokenLen || len(suffix) < 1 || confidence < minConfidence {
		return empty
	}

	if endsInCJK(before) && startsWithASCIIAlnum(suffix) {
		suffix = " " + suffix
	}

	return Result{
		Suggestion:   suffix,
		Confidence:   confidence,
		ReplaceStart: cursorUTF16,
		ReplaceEnd:   cursorUTF16,
	}
}

// lastASCIITokenPrefix returns the longest trailing run of [A-Za-z0-9_]
// ending at the end of before, along with its byte length. Returns ("", 0)
// if the last character is not in that class.
func lastASCIITokenPrefix(before string) (string, int) {
	end := len(before)
	start := end
	for start > 0 {
		c := before[start-1]
		if !isTokenByte(c) {
			break
		}
		start--
	}
	return before[start:end], end - start
}

func isTokenByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_':
		return true
	default:
		return false
	}
}

func startsWithASCIIAlnum(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return isTokenByte(c) && c != '_'
}

// endsInCJK reports whether the last rune of s is a CJK Unified Ideograph
// (U+4E00..U+9FFF).
func endsInCJK(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r >= cjkRangeStart && r <= cjkRangeEnd
}
