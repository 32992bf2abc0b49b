package sanitize

import (
	"regexp"
	"strings"

	"docx2md/internal/mathspan"
)

// Equation-editor markup converts with recurring defects. Each pattern
// repairs one defect class; they apply only inside math spans.
var (
	// \sum_{}^{}i = 1^{n}: the lower bound leaked out of the subscript.
	eqSumBoundsRe = regexp.MustCompile(`\\sum_\{\}\^\{\}([a-zA-Z]\s*=\s*[\w]+)\^\{([^}]+)\}`)

	// \op_{word}^{}: a multi-letter word subscript is a label, not a
	// variable product, so it gets \text. Single letters stay bare and
	// fall through to the empty-superscript removal.
	eqOpWordRe = regexp.MustCompile(`\\(sum|prod|int|oint|iint|iiint|bigcup|bigcap|bigoplus|bigotimes|bigvee|bigwedge)_\{([a-zA-Z]{2,})\}\^\{\}`)

	// Remaining empty superscripts ^{} carry no meaning. Runs after the
	// two patterns above, which consume theirs.
	eqEmptySuperRe = regexp.MustCompile(`(\\[a-zA-Z]+(?:_\{[^}]*\})?)\^\{\}`)

	// \hslash is missing from common distributions.
	eqHslashRe = regexp.MustCompile(`\\hslash`)

	// Lowercase blackboard bold is undefined in the standard fonts.
	eqLowerBBRe = regexp.MustCompile(`\\mathbb\{([a-z])\}`)
)

// FixEquations repairs garbled equation-editor output inside the math
// spans of content. Text outside math delimiters is untouched.
func FixEquations(content string) string {
	return mathspan.MapMath(content, mathspan.DollarInline, mathspan.DollarDisplay, fixEquation)
}

func fixEquation(eq string) string {
	eq = eqSumBoundsRe.ReplaceAllStringFunc(eq, func(m string) string {
		groups := eqSumBoundsRe.FindStringSubmatch(m)
		sub := strings.ReplaceAll(groups[1], " ", "")
		return `\sum_{` + sub + `}^{` + groups[2] + `}`
	})
	eq = eqOpWordRe.ReplaceAllString(eq, `\${1}_{\text{${2}}}`)
	eq = eqEmptySuperRe.ReplaceAllString(eq, "${1}")
	eq = eqHslashRe.ReplaceAllString(eq, `\hbar`)
	eq = eqLowerBBRe.ReplaceAllString(eq, `\mathbf{${1}}`)
	return eq
}
