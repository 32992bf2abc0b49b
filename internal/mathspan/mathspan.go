// Package mathspan partitions a text buffer into alternating text and math
// spans. Every context-aware sanitizer pass depends on this split, because
// different substitution rules apply inside vs. outside math delimiters.
//
// The scan is a hand-written left-to-right pass rather than a regular
// expression: the reference pattern needs lookbehind to keep an inline
// close from eating the first half of a display delimiter, which Go's
// regexp engine does not support.
package mathspan

import (
	"iter"
	"strings"

	"docx2md/internal/types"
)

// Delimiters is an open/close marker pair.
type Delimiters struct {
	Open  string
	Close string
}

// DollarInline is the default inline pair ($...$).
var DollarInline = Delimiters{Open: "$", Close: "$"}

// DollarDisplay is the default display pair ($$...$$).
var DollarDisplay = Delimiters{Open: "$$", Close: "$$"}

// Tokens returns a lazy sequence of tokens covering s with no gaps or
// overlaps. At each position a display span is attempted before an inline
// span, so "$$a$$" is one display token, never two inline tokens.
// Unmatched delimiters become ordinary text; the scan never fails.
func Tokens(s string, inline, display Delimiters) iter.Seq[types.Token] {
	return func(yield func(types.Token) bool) {
		var text strings.Builder

		flush := func() bool {
			if text.Len() == 0 {
				return true
			}
			ok := yield(types.Token{Kind: types.TokenText, Content: text.String()})
			text.Reset()
			return ok
		}

		i := 0
		for i < len(s) {
			if end, ok := matchDisplay(s, i, display); ok {
				if !flush() {
					return
				}
				if !yield(types.Token{Kind: types.TokenMath, Content: s[i:end]}) {
					return
				}
				i = end
				continue
			}
			if end, ok := matchInline(s, i, inline, display); ok {
				if !flush() {
					return
				}
				if !yield(types.Token{Kind: types.TokenMath, Content: s[i:end]}) {
					return
				}
				i = end
				continue
			}
			text.WriteByte(s[i])
			i++
		}
		flush()
	}
}

// matchDisplay reports whether a complete display span starts at i and
// returns the index just past its closing delimiter. The closing search is
// non-greedy and spans newlines.
func matchDisplay(s string, i int, d Delimiters) (int, bool) {
	if d.Open == "" || !strings.HasPrefix(s[i:], d.Open) {
		return 0, false
	}
	start := i + len(d.Open)
	j := strings.Index(s[start:], d.Close)
	if j < 0 {
		return 0, false
	}
	return start + j + len(d.Close), true
}

// matchInline reports whether a complete inline span starts at i and
// returns the index just past its closing delimiter. An opening position
// that also starts a display delimiter is rejected (display takes
// precedence), and a closing candidate directly preceded by the closing
// marker's final byte is skipped so that "$a$" never terminates on the
// first half of an adjacent "$$".
func matchInline(s string, i int, inline, display Delimiters) (int, bool) {
	if inline.Open == "" || !strings.HasPrefix(s[i:], inline.Open) {
		return 0, false
	}
	if display.Open != "" && display.Open != inline.Open && strings.HasPrefix(s[i:], display.Open) {
		return 0, false
	}
	closeByte := inline.Close[len(inline.Close)-1]
	from := i + len(inline.Open)
	for {
		j := strings.Index(s[from:], inline.Close)
		if j < 0 {
			return 0, false
		}
		k := from + j
		if s[k-1] == closeByte {
			from = k + 1
			continue
		}
		return k + len(inline.Close), true
	}
}

// Tokenize collects the token sequence for s into a slice.
func Tokenize(s string, inline, display Delimiters) []types.Token {
	var out []types.Token
	for tok := range Tokens(s, inline, display) {
		out = append(out, tok)
	}
	return out
}

// TokenizeDollars tokenizes with the default $ / $$ delimiters.
func TokenizeDollars(s string) []types.Token {
	return Tokenize(s, DollarInline, DollarDisplay)
}

// Reassemble joins tokens back into the original buffer.
func Reassemble(tokens []types.Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Content)
	}
	return sb.String()
}

// MapMath applies fn to every math token of s and returns the rebuilt
// buffer. Text tokens pass through untouched.
func MapMath(s string, inline, display Delimiters, fn func(string) string) string {
	var sb strings.Builder
	for tok := range Tokens(s, inline, display) {
		if tok.Kind == types.TokenMath {
			sb.WriteString(fn(tok.Content))
		} else {
			sb.WriteString(tok.Content)
		}
	}
	return sb.String()
}

// MapSpans applies mathFn to math tokens and textFn to text tokens.
// Either function may be nil to pass that token kind through.
func MapSpans(s string, inline, display Delimiters, mathFn, textFn func(string) string) string {
	var sb strings.Builder
	for tok := range Tokens(s, inline, display) {
		switch {
		case tok.Kind == types.TokenMath && mathFn != nil:
			sb.WriteString(mathFn(tok.Content))
		case tok.Kind == types.TokenText && textFn != nil:
			sb.WriteString(textFn(tok.Content))
		default:
			sb.WriteString(tok.Content)
		}
	}
	return sb.String()
}
