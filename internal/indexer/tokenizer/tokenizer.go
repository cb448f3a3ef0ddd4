// Package tokenizer extracts index terms from document bodies. Only tokens
// between a body-start marker and the body-end marker are eligible, and each
// one is normalised by stripping trailing punctuation and lower-casing.
package tokenizer

import (
	"strings"
)

const (
	DefaultBodyStart = "Section-2"
	DefaultBodyEnd   = "#end"
)

// trailingPunct lists the characters stripped from the end of a token.
const trailingPunct = ".,:;?*"

// Markers delimit the indexable part of a document.
type Markers struct {
	Start string
	End   string
}

func DefaultMarkers() Markers {
	return Markers{Start: DefaultBodyStart, End: DefaultBodyEnd}
}

type scanState int

const (
	outsideBody scanState = iota
	insideBody
)

// Scanner is a per-document two-state machine. Feed tokens in document
// order; it reports the ones that fall inside a body span.
type Scanner struct {
	markers Markers
	state   scanState
}

func NewScanner(m Markers) *Scanner {
	return &Scanner{markers: m, state: outsideBody}
}

// Feed consumes one token. It returns the token and true when the token is
// body content. The end marker closes a span even when no span is open.
func (s *Scanner) Feed(tok string) (string, bool) {
	if tok == s.markers.End {
		s.state = outsideBody
		return "", false
	}
	if s.state == insideBody {
		return tok, true
	}
	if tok == s.markers.Start {
		s.state = insideBody
	}
	return "", false
}

// Reset returns the scanner to the outside-body state so it can be reused
// for the next document.
func (s *Scanner) Reset() {
	s.state = outsideBody
}

// Terms resets the scanner and returns the normalised, non-empty terms of
// the body spans of tokens, in document order and with repeats.
func (s *Scanner) Terms(tokens []string) []string {
	s.Reset()
	terms := make([]string, 0, len(tokens)/2)
	for _, tok := range tokens {
		raw, ok := s.Feed(tok)
		if !ok {
			continue
		}
		if term := Normalize(raw); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Normalize strips trailing '.', ',', ':', ';', '?' and '*' characters and
// lower-cases the rest. Leading and interior characters are kept.
func Normalize(tok string) string {
	return strings.ToLower(strings.TrimRight(tok, trailingPunct))
}

// BodyTerms is Terms on a fresh scanner.
func BodyTerms(tokens []string, m Markers) []string {
	return NewScanner(m).Terms(tokens)
}
