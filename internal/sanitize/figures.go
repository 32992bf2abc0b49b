package sanitize

import (
	"regexp"
	"strings"

	"docx2md/internal/logger"
	"docx2md/internal/mathspan"
)

// Documents frequently carry two captions per image: generated alt text
// on the image itself and a real "Figure N." paragraph right below it.
// The figure pass promotes the real caption into the alt slot and drops
// the duplicate paragraph.
var (
	captionStartRe = regexp.MustCompile(`(?i)^\*{1,3}Figure`)
	imageStartRe   = regexp.MustCompile(`^!\[`)

	emphasisRe     = regexp.MustCompile(`(?s)\*{1,3}(.*?)\*{1,3}`)
	newlineSpaceRe = regexp.MustCompile(`\s*\n\s*`)
	doubleSpaceRe  = regexp.MustCompile(`  +`)

	blockSplitRe = regexp.MustCompile(`\n{2,}`)
	altSlotRe    = regexp.MustCompile(`!\[[\s\S]*?\]\(`)
)

// FixFigures walks paragraph blocks and, wherever an image block is
// followed by a figure caption paragraph, moves the cleaned caption into
// the image alt text and removes the caption paragraph.
func FixFigures(content string) string {
	blocks := blockSplitRe.Split(content, -1)
	result := make([]string, 0, len(blocks))

	i := 0
	for i < len(blocks) {
		block := strings.TrimSpace(blocks[i])

		if imageStartRe.MatchString(block) {
			j := i + 1
			for j < len(blocks) && strings.TrimSpace(blocks[j]) == "" {
				j++
			}
			if j < len(blocks) {
				next := strings.TrimSpace(blocks[j])
				if captionStartRe.MatchString(next) {
					caption := extractCaption(next)
					result = append(result, replaceAltText(block, caption))
					i = j + 1
					logger.Debug("promoted figure caption", logger.String("caption", truncate(caption, 60)))
					continue
				}
			}
		}
		result = append(result, blocks[i])
		i++
	}
	return strings.Join(result, "\n\n")
}

// extractCaption turns a caption paragraph into clean single-line text
// with its math spans intact and caption-safe.
func extractCaption(block string) string {
	text := newlineSpaceRe.ReplaceAllString(block, " ")
	text = stripEmphasisOutsideMath(text)
	text = sanitizeCaptionMath(text)
	return strings.TrimSpace(text)
}

// stripEmphasisOutsideMath removes emphasis markers from the text spans
// only, leaving math spans byte for byte.
func stripEmphasisOutsideMath(text string) string {
	return mathspan.MapSpans(text, mathspan.DollarInline, mathspan.DollarDisplay,
		nil,
		func(part string) string {
			part = emphasisRe.ReplaceAllString(part, "$1")
			return doubleSpaceRe.ReplaceAllString(part, " ")
		})
}

// sanitizeCaptionMath makes math spans legal inside a caption: display
// delimiters become inline ones and spans with unbalanced braces are
// dropped.
func sanitizeCaptionMath(text string) string {
	text = strings.ReplaceAll(text, `\[`, "$")
	text = strings.ReplaceAll(text, `\]`, "$")
	text = strings.ReplaceAll(text, `\(`, "$")
	text = strings.ReplaceAll(text, `\)`, "$")
	text = strings.ReplaceAll(text, "$$", "$")

	var b strings.Builder
	i := 0
	for i < len(text) {
		if text[i] == '$' && (i == 0 || text[i-1] != '\\') {
			j := strings.IndexByte(text[i+1:], '$')
			if j == -1 {
				break
			}
			j += i + 1
			span := text[i+1 : j]
			if strings.Count(span, "{") == strings.Count(span, "}") {
				b.WriteString("$" + span + "$")
			}
			i = j + 1
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

// replaceAltText swaps the alt slot of every image reference in the
// block for newAlt. Alt text may span wrapped lines.
func replaceAltText(block, newAlt string) string {
	return altSlotRe.ReplaceAllStringFunc(block, func(string) string {
		return "![" + newAlt + "]("
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
