package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"docx2md/internal/logger"
	"docx2md/internal/types"
)

// DefaultWideThreshold is the longest-line length above which a display
// equation is wrapped for horizontal scaling.
const DefaultWideThreshold = 300

var (
	matrixEnvRe = regexp.MustCompile(`\\begin\{[pbBvV]?matrix\}`)

	// A $$ pair with a newline after it is a display opener or closer and
	// stays untouched; anything else is two inline spans colliding.
	adjacentDollarRe = regexp.MustCompile(`\$\$\n|\$\$`)

	excessBlankRe = regexp.MustCompile(`\n{4,}`)

	leftoverPlaceholderRe = regexp.MustCompile(`@@MATH_(?:DISPLAY|INLINE)_\d{4}@@`)
)

// Splice substitutes every placeholder in markdown with its delimited
// LaTeX body. Inline equations become $...$ with no padding; display
// equations become a blank-line-separated $$ block, or a resizebox raw
// block when the body is too wide for the page. A missing or empty map
// entry drops the placeholder silently.
//
// Returned warnings list placeholders that survived splicing, which
// indicates the structural converter mangled the placeholder text.
func Splice(markdown string, records []types.EquationRecord, latex map[int]string, wideThreshold int) (string, []string) {
	if wideThreshold <= 0 {
		wideThreshold = DefaultWideThreshold
	}

	for _, rec := range records {
		body, ok := latex[rec.Index]
		if !ok || body == "" {
			markdown = strings.ReplaceAll(markdown, rec.Placeholder, "")
			continue
		}

		var replacement string
		if rec.Kind == types.KindDisplay {
			if isWideEquation(body, wideThreshold) {
				replacement = "\n\n```{=latex}\n" +
					`\resizebox{\linewidth}{!}{$\displaystyle` + "\n" +
					body + "\n" +
					"$}\n```\n\n"
			} else {
				replacement = "\n\n$$\n" + body + "\n$$\n\n"
			}
		} else {
			replacement = "$" + body + "$"
		}
		markdown = strings.ReplaceAll(markdown, rec.Placeholder, replacement)
	}

	// Adjacent inline spans produce $$ with no newline; separate them so
	// they are not parsed as a display delimiter.
	markdown = adjacentDollarRe.ReplaceAllStringFunc(markdown, func(m string) string {
		if strings.HasSuffix(m, "\n") {
			return m
		}
		return "$ $"
	})

	markdown = excessBlankRe.ReplaceAllString(markdown, "\n\n\n")

	var warnings []string
	for _, leftover := range leftoverPlaceholderRe.FindAllString(markdown, -1) {
		w := fmt.Sprintf("placeholder survived splicing: %s", leftover)
		warnings = append(warnings, w)
		logger.Warn("placeholder survived splicing", logger.String("placeholder", leftover))
	}
	return markdown, warnings
}

// isWideEquation flags display bodies likely to overflow the page:
// a longest line over the threshold, or a chain of three or more matrix
// environments.
func isWideEquation(body string, threshold int) bool {
	longest := 0
	for _, line := range strings.Split(body, "\n") {
		if len(line) > longest {
			longest = len(line)
		}
	}
	if longest > threshold {
		return true
	}
	return len(matrixEnvRe.FindAllString(body, -1)) >= 3
}
