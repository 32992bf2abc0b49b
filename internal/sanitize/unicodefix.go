package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"docx2md/internal/config"
	"docx2md/internal/mathspan"
)

// Replacements safe in any context.
var alwaysReplacer = strings.NewReplacer(
	" ", " ",
	"≔", ":=",
	"Τ", "T",
)

// Replacements inside math spans.
var inMathReplacer = strings.NewReplacer(
	"ℓ", `\ell `,
	"Β", "B",
	"θ", `\theta`,
	"⋰", `\ddots`,
	"₀", "_0", "₁", "_1", "₂", "_2", "₃", "_3", "₄", "_4",
	"₅", "_5", "₆", "_6", "₇", "_7", "₈", "_8", "₉", "_9",
)

// Replacements in body text. Math characters in prose get their own
// inline span so they survive the downstream toolchain.
var inTextReplacer = strings.NewReplacer(
	"Β", "B",
	"θ", `$\theta$`,
)

var (
	ellSubTextRe   = regexp.MustCompile(`ℓ([₀₁₂₃₄₅₆₇₈₉]+)`)
	subDigitTextRe = regexp.MustCompile(`([₀₁₂₃₄₅₆₇₈₉]+)`)

	subDigitMapper = strings.NewReplacer(
		"₀", "0", "₁", "1", "₂", "2", "₃", "3", "₄", "4",
		"₅", "5", "₆", "6", "₇", "7", "₈", "8", "₉", "9",
	)
)

// FixUnicode replaces unicode math characters that the downstream
// toolchain cannot typeset. The content is NFC-normalized first, then
// context-free replacements run, then the math/text split decides which
// rule set applies to each span.
func FixUnicode(content string, cfg config.UnicodeFixConfig) string {
	if !cfg.Enabled {
		return content
	}

	content = norm.NFC.String(content)
	content = alwaysReplacer.Replace(content)
	for _, rule := range cfg.CustomReplacements {
		if rule.Char != "" && rule.Always != "" {
			content = strings.ReplaceAll(content, rule.Char, rule.Always)
		}
	}

	return mathspan.MapSpans(content, mathspan.DollarInline, mathspan.DollarDisplay,
		func(math string) string { return fixInMath(math, cfg.CustomReplacements) },
		func(text string) string { return fixInText(text, cfg.CustomReplacements) })
}

func fixInMath(text string, custom []config.CustomReplacement) string {
	text = inMathReplacer.Replace(text)
	for _, rule := range custom {
		if rule.Char != "" && rule.Math != "" {
			text = strings.ReplaceAll(text, rule.Char, rule.Math)
		}
	}
	return text
}

func fixInText(text string, custom []config.CustomReplacement) string {
	// ℓ with trailing subscript digits forms one unit: ℓ₁ becomes $\ell_{1}$.
	text = ellSubTextRe.ReplaceAllStringFunc(text, func(m string) string {
		groups := ellSubTextRe.FindStringSubmatch(m)
		return `$\ell_{` + subDigitMapper.Replace(groups[1]) + `}$`
	})
	text = strings.ReplaceAll(text, "ℓ", `$\ell$`)
	text = subDigitTextRe.ReplaceAllStringFunc(text, func(m string) string {
		return `$_{` + subDigitMapper.Replace(m) + `}$`
	})

	text = inTextReplacer.Replace(text)
	for _, rule := range custom {
		if rule.Char != "" && rule.Text != "" {
			text = strings.ReplaceAll(text, rule.Char, rule.Text)
		}
	}
	return text
}
