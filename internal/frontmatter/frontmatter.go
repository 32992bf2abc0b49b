// Package frontmatter builds the YAML metadata block prepended to
// converted documents. Metadata comes from the container's core
// properties first, then a scan of the opening body paragraphs, then
// configuration defaults, with the input filename as the last-resort
// title.
package frontmatter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"docx2md/internal/config"
	"docx2md/internal/docmeta"
	"docx2md/internal/logger"
	"docx2md/internal/types"
)

var (
	boldTitleRe      = regexp.MustCompile(`(?m)^\*\*([^*\n]+)\*\*\s*$`)
	italicSubtitleRe = regexp.MustCompile(`(?m)^\*([^*\n]+)\*\s*$`)
	authorLineRe     = regexp.MustCompile(`(?m)^([A-Z][^\n<]*?)\s+--\s+<?([a-zA-Z0-9._%+\-]+@[^\s>]+)>?\s*$`)

	// The leading title block: bold title, then optional italic subtitle
	// and author line, each closed by a blank line.
	titleBlockRe = regexp.MustCompile(`(?m)^\*\*[^*\n]+\*\*\s*\n\n(?:\*[^*\n]+\*\s*\n\n)?(?:[A-Z][^\n<]*?--[^\n]+\n\n)?`)
)

var titleCaser = cases.Title(language.English)

// Generate returns the frontmatter block (including the --- fences) and
// the body with its title paragraphs stripped when configured. Content
// that already opens with a YAML fence is returned unchanged with an
// empty block, so repeated runs never stack frontmatter.
func Generate(props docmeta.Properties, cfg config.FrontMatterConfig, inputPath, content string) (string, string, error) {
	if !cfg.Enabled {
		return "", content, nil
	}
	if strings.HasPrefix(strings.TrimLeft(content, " \t\r\n"), "---") {
		logger.Debug("content already carries frontmatter, skipping")
		return "", content, nil
	}

	title := strings.TrimSpace(props.Title)
	author := strings.TrimSpace(props.Author)
	subtitle := strings.TrimSpace(props.Subject)
	email := ""

	if cfg.ExtractFromBody {
		title, subtitle, author, email = extractFromBody(content, title, subtitle, author)
	}
	if title == "" {
		title = titleFromFilename(inputPath)
	}
	if author == "" {
		author = cfg.DefaultAuthor
	}

	type entry struct {
		key string
		val any
	}
	var entries []entry
	if title != "" {
		entries = append(entries, entry{"title", title})
	}
	if subtitle != "" {
		entries = append(entries, entry{"subtitle", subtitle})
	}
	if author != "" {
		entries = append(entries, entry{"author", author})
	}
	if email != "" {
		entries = append(entries, entry{"email", email})
	}

	opts := map[string]any{}
	for k, v := range config.DefaultMdTexPDF() {
		opts[k] = v
	}
	for k, v := range cfg.MdTexPDF {
		opts[k] = v
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entries = append(entries, entry{k, opts[k]})
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		var k, v yaml.Node
		k.SetString(e.key)
		if err := v.Encode(e.val); err != nil {
			return "", content, types.NewAppErrorWithDetails(types.ErrInternal,
				"cannot encode frontmatter value", e.key, err)
		}
		root.Content = append(root.Content, &k, &v)
	}
	encoded, err := yaml.Marshal(root)
	if err != nil {
		return "", content, types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot marshal frontmatter", inputPath, err)
	}

	updated := content
	if cfg.StripBodyTitleBlock {
		updated = stripTitleBlock(content)
	}

	block := fmt.Sprintf("---\n%s---\n\n", encoded)
	logger.Debug("generated frontmatter",
		logger.String("title", title),
		logger.String("author", author))
	return block, updated, nil
}

// extractFromBody scans the opening paragraphs for title, subtitle and
// author patterns, filling only values that are still empty.
func extractFromBody(content, title, subtitle, author string) (string, string, string, string) {
	email := ""

	if title == "" {
		if m := boldTitleRe.FindStringSubmatch(head(content, 500)); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}
	if subtitle == "" {
		if m := italicSubtitleRe.FindStringSubmatch(head(content, 800)); m != nil {
			subtitle = strings.TrimSpace(m[1])
		}
	}
	if author == "" {
		if m := authorLineRe.FindStringSubmatch(head(content, 1000)); m != nil {
			author = strings.TrimSpace(m[1])
			email = strings.TrimSpace(m[2])
		}
	}
	return title, subtitle, author, email
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func titleFromFilename(inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return titleCaser.String(stem)
}

// stripTitleBlock removes the first leading title block occurrence; the
// same paragraphs now live in the frontmatter.
func stripTitleBlock(content string) string {
	loc := titleBlockRe.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return content[:loc[0]] + content[loc[1]:]
}
