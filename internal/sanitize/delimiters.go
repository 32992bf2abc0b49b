package sanitize

import (
	"fmt"
	"regexp"

	"docx2md/internal/config"
)

var (
	parenMathRe   = regexp.MustCompile(`(?s)\\\((.*?)\\\)`)
	bracketMathRe = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)

	beginEnvRe = regexp.MustCompile(`\\begin\{([^}]+)\}`)
	endEnvRe   = regexp.MustCompile(`\\end\{([^}]+)\}`)
)

// DelimiterStats counts the spans FixDelimiters rewrote.
type DelimiterStats struct {
	InlineOriginal  int
	DisplayOriginal int
}

// FixDelimiters rewrites \(...\) and \[...\] spans to the configured
// inline and display delimiter pairs. It is only needed when equations
// went through the structural converter directly; the extraction pipeline
// emits dollar delimiters itself.
func FixDelimiters(content string, eq config.EquationsConfig) (string, DelimiterStats) {
	stats := DelimiterStats{
		InlineOriginal:  len(parenMathRe.FindAllString(content, -1)),
		DisplayOriginal: len(bracketMathRe.FindAllString(content, -1)),
	}

	inOpen, inClose := eq.InlinePair()
	dispOpen, dispClose := eq.DisplayPair()

	content = parenMathRe.ReplaceAllStringFunc(content, func(m string) string {
		groups := parenMathRe.FindStringSubmatch(m)
		return inOpen + groups[1] + inClose
	})
	content = bracketMathRe.ReplaceAllStringFunc(content, func(m string) string {
		groups := bracketMathRe.FindStringSubmatch(m)
		return dispOpen + groups[1] + dispClose
	})
	return content, stats
}

// ValidateMath checks every math span for structural defects that will
// not typeset: unbalanced braces and mismatched environments. It returns
// human-readable issue descriptions; an empty slice means the content
// passed.
func ValidateMath(content string) []string {
	var issues []string

	check := func(kind, eq string, n int) {
		if !validEquation(eq) {
			snippet := eq
			if len(snippet) > 30 {
				snippet = snippet[:30] + "..."
			}
			issues = append(issues, fmt.Sprintf("invalid %s equation #%d: %s", kind, n, snippet))
		}
	}

	displayRe := regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	inlineStripped := displayRe.ReplaceAllString(content, "")

	for i, m := range displayRe.FindAllStringSubmatch(content, -1) {
		check("display", m[1], i+1)
	}
	inlineRe := regexp.MustCompile(`(?s)\$(.*?)\$`)
	for i, m := range inlineRe.FindAllStringSubmatch(inlineStripped, -1) {
		check("inline", m[1], i+1)
	}
	return issues
}

func validEquation(eq string) bool {
	opens, closes := 0, 0
	for i := 0; i < len(eq); i++ {
		switch eq[i] {
		case '{':
			opens++
		case '}':
			closes++
		}
	}
	if opens != closes {
		return false
	}
	return len(beginEnvRe.FindAllString(eq, -1)) == len(endEnvRe.FindAllString(eq, -1))
}
