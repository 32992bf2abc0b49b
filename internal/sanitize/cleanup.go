// Package sanitize repairs the markdown the structural converter emits
// from word-processing documents. The converter output carries duplicated
// equation representations, orphan math delimiters, generated heading
// identifiers and similar artifacts; every rule here rewrites one such
// artifact class. All rules are safe to run repeatedly on their own
// output.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"

	"docx2md/internal/config"
)

// Documents often store an equation twice, as math markup and as a plain
// text fallback label. Both convert to inline math, the label trailed by
// an orphan display opener. The dollar-run patterns below collapse the
// resulting $$$ and $$$$ sequences before anything else touches the text.
var (
	// Runs of four or more dollars reduce to a display pair.
	dollarRunRe = regexp.MustCompile(`\${3,}`)

	// $X$$Y$$$ keeps the first span and drops the label plus orphan
	// opener. The trailing group re-emits the character after the run so
	// longer runs are left to the run collapse above.
	tripleDollarARe = regexp.MustCompile(`(\$[^$\n]+\$)\$[^$\n]+\$\$\$([^$]|\z)`)

	// TEXT$$WORD$$\cmd... on one line is a text label glued to raw
	// commands; the label goes and the command tail becomes inline math.
	wordLabelInlineRe = regexp.MustCompile(`(?m)^(.+?)\$\$([A-Za-z]+)\$\$(\\[^$\n]+)\$?$`)

	// Two subscripts on the same base do not compile; an empty group
	// between them attaches the second subscript to nothing.
	doubleSubscriptRe = regexp.MustCompile(`(\}_\{[^}]*\})\}(_\{)`)

	// [text]{.underline} spans come from underline formatting and have no
	// LaTeX rendering without extra packages.
	underlineSpanRe = regexp.MustCompile(`\[([^\]]*)\]\{\.underline\}`)

	imageLineRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

	// $X$^Y^ merges into a single span with a real superscript. Braces in
	// the superscript would mean ^{...} syntax, which is excluded.
	mathThenSuperRe = regexp.MustCompile(`\$([^$]+)\$\^([^^\n{}]+)\^`)

	// word$Word$ is the text-plus-label duplication in inline form.
	wordTextLabelRe = regexp.MustCompile(`([a-zA-Z]{2,})\$([a-zA-Z]+)\$`)

	// Closing inline math glued to the next word.
	mathGluedAfterRe = regexp.MustCompile(`(\$[^ $\n][^$\n]*\$)([a-zA-Z])`)

	// A space after an opening dollar defeats inline math recognition.
	// The leading group excludes closing dollars, which are preceded by
	// math content characters.
	spaceAfterOpenDollarRe = regexp.MustCompile(`(\A|[^a-zA-Z0-9})\]\\$])\$ ([a-zA-Z\\])`)

	// \theta^n^ outside any math span becomes $\theta^{n}$.
	bareCmdSuperRe = regexp.MustCompile(`(\A|[^$])(\\[a-zA-Z]+)\^([^^\n{}]{1,20})\^([^$]|\z)`)

	tocHeadingRe    = regexp.MustCompile(`(?i)^#+\s+\*{0,3}Table\s+of\s+Contents\*{0,3}(?:\s*\{[^}]*\})?\s*$`)
	headingLineRe   = regexp.MustCompile(`^(#+)\s+(.+)$`)
	emptyHeadingRe  = regexp.MustCompile(`(?m)^#+\s*$`)
	emptyBracketsRe = regexp.MustCompile(`(?m)^\[\]\s*$`)
	headingIDRe     = regexp.MustCompile(`\{#[a-zA-Z0-9_-]+([^}]*)\}`)

	imageSizeAttrsRe = regexp.MustCompile(`(!\[[^\]]*\]\([^)]+\))\{(?:width|height)="[^"]*"(?:\s+(?:width|height)="[^"]*")?\}`)

	headingMarkupMidRe = regexp.MustCompile(`^\*{1,3}(.*?)\*{1,3}(\s)`)
	headingMarkupEndRe = regexp.MustCompile(`^\*{1,3}(.*?)\*{1,3}$`)
)

// Cleaner removes converter artifacts from raw markdown.
type Cleaner struct {
	cfg       config.CleanupConfig
	outputDir string
}

// NewCleaner builds a Cleaner. outputDir anchors image path
// relativization; empty means the current directory.
func NewCleaner(cfg config.CleanupConfig, outputDir string) *Cleaner {
	if outputDir == "" {
		outputDir = "."
	}
	return &Cleaner{cfg: cfg, outputDir: outputDir}
}

// Clean runs the artifact rules in a fixed order. The dollar-run repair
// must come first because stray $$$ sequences corrupt every later pass
// that tokenizes math.
func (c *Cleaner) Clean(content string) string {
	if c.cfg.StripTripleDollar {
		content = stripTripleDollar(content)
	}
	if c.cfg.RemoveTOC {
		content = removeTOC(content)
	}
	if c.cfg.StripHeadingMarkup {
		content = stripHeadingMarkup(content)
	}
	if c.cfg.StripHeadingIDs {
		content = stripHeadingIDs(content)
	}
	if c.cfg.RemoveImageAttrs {
		content = imageSizeAttrsRe.ReplaceAllString(content, "$1")
	}
	if c.cfg.FixImagePaths {
		content = fixImagePaths(content, c.outputDir)
	}
	content = emptyHeadingRe.ReplaceAllString(content, "")
	content = emptyBracketsRe.ReplaceAllString(content, "")
	return content
}

func stripTripleDollar(content string) string {
	// Collapse runs: 4+ dollars become a display pair, exact triples
	// become a display pair after the label patterns had their chance.
	content = dollarRunRe.ReplaceAllStringFunc(content, func(m string) string {
		if len(m) >= 4 {
			return "$$"
		}
		return m
	})

	content = tripleDollarARe.ReplaceAllString(content, "${1}${2}")

	// Remaining exact triples are a stray dollar before a display span.
	content = dollarRunRe.ReplaceAllStringFunc(content, func(m string) string {
		if len(m) == 3 {
			return "$$"
		}
		return m
	})

	content = wordLabelInlineRe.ReplaceAllStringFunc(content, func(m string) string {
		groups := wordLabelInlineRe.FindStringSubmatch(m)
		return groups[1] + " $" + groups[3] + "$"
	})

	content = doubleSubscriptRe.ReplaceAllString(content, "${1}}{}${2}")
	content = underlineSpanRe.ReplaceAllString(content, "$1")
	content = sanitizeImageAlt(content)
	content = mathThenSuperRe.ReplaceAllString(content, "$$${1}^{${2}}$$")

	content = wordTextLabelRe.ReplaceAllStringFunc(content, func(m string) string {
		groups := wordTextLabelRe.FindStringSubmatch(m)
		if strings.EqualFold(groups[1], groups[2]) {
			return groups[1]
		}
		return m
	})

	content = mathGluedAfterRe.ReplaceAllString(content, "${1} ${2}")
	content = spaceAfterOpenDollarRe.ReplaceAllString(content, "${1}$$${2}")

	return content
}

// removeTOC drops the generated table-of-contents heading and every line
// after it up to the next heading that is not itself a contents link.
func removeTOC(content string) string {
	lines := strings.Split(content, "\n")
	result := lines[:0:0]
	inTOC := false

	for _, line := range lines {
		if tocHeadingRe.MatchString(line) {
			inTOC = true
			continue
		}
		if inTOC {
			if headingLineRe.MatchString(line) && !strings.Contains(line, "](#") {
				inTOC = false
				result = append(result, line)
			}
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}

// stripHeadingMarkup removes bold and italic markers from heading text.
// The loop runs to a fixpoint so nested markers unwrap fully.
func stripHeadingMarkup(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		m := headingLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := m[2]
		for {
			prev := text
			text = headingMarkupMidRe.ReplaceAllString(text, "${1}${2}")
			text = headingMarkupEndRe.ReplaceAllString(text, "$1")
			if text == prev {
				break
			}
		}
		lines[i] = m[1] + " " + text
	}
	return strings.Join(lines, "\n")
}

// stripHeadingIDs removes generated heading identifiers, keeping only an
// .unnumbered class when present.
func stripHeadingIDs(content string) string {
	return headingIDRe.ReplaceAllStringFunc(content, func(m string) string {
		groups := headingIDRe.FindStringSubmatch(m)
		if strings.Contains(groups[1], ".unnumbered") {
			return " {.unnumbered}"
		}
		return ""
	})
}

// fixImagePaths rewrites absolute image paths relative to outputDir.
func fixImagePaths(content, outputDir string) string {
	return imageLineRe.ReplaceAllStringFunc(content, func(m string) string {
		groups := imageLineRe.FindStringSubmatch(m)
		alt, path := groups[1], groups[2]
		if !filepath.IsAbs(path) {
			return m
		}
		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return m
		}
		return "![" + alt + "](" + filepath.ToSlash(rel) + ")"
	})
}

// sanitizeImageAlt repairs alt text, which the downstream toolchain puts
// into captions. Display delimiters become inline ones, and math spans
// with unbalanced braces are dropped entirely.
func sanitizeImageAlt(content string) string {
	return imageLineRe.ReplaceAllStringFunc(content, func(m string) string {
		groups := imageLineRe.FindStringSubmatch(m)
		alt, path := groups[1], groups[2]

		alt = strings.ReplaceAll(alt, `\[`, "$")
		alt = strings.ReplaceAll(alt, `\]`, "$")
		alt = strings.ReplaceAll(alt, `\(`, "$")
		alt = strings.ReplaceAll(alt, `\)`, "$")
		alt = strings.ReplaceAll(alt, "$$", "$")

		var b strings.Builder
		i := 0
		for i < len(alt) {
			if alt[i] == '$' && (i == 0 || alt[i-1] != '\\') {
				j := strings.IndexByte(alt[i+1:], '$')
				if j == -1 {
					break
				}
				j += i + 1
				span := alt[i+1 : j]
				if strings.Count(span, "{") == strings.Count(span, "}") {
					b.WriteString("$" + span + "$")
				}
				i = j + 1
				continue
			}
			b.WriteByte(alt[i])
			i++
		}
		return "![" + b.String() + "](" + path + ")"
	})
}

// FinalSanitize is the last repair pass. It runs after delimiter fixing
// and figure handling, both of which can reintroduce artifacts the early
// pass already handled.
func FinalSanitize(content string) string {
	content = doubleSubscriptRe.ReplaceAllString(content, "${1}}{}${2}")
	content = underlineSpanRe.ReplaceAllString(content, "$1")
	content = sanitizeImageAlt(content)
	content = mathThenSuperRe.ReplaceAllString(content, "$$${1}^{${2}}$$")
	content = bareCmdSuperRe.ReplaceAllString(content, "${1}$$${2}^{${3}}$$${4}")
	content = spaceAfterOpenDollarRe.ReplaceAllString(content, "${1}$$${2}")
	return content
}
