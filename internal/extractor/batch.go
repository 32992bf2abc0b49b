package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"docx2md/internal/container"
	"docx2md/internal/logger"
	"docx2md/internal/pandoc"
	"docx2md/internal/types"
)

const (
	batchContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Override PartName="/word/document.xml" ` +
		`ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`

	batchRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" ` +
		`Target="word/document.xml"/>` +
		`</Relationships>`

	batchDocumentOpen = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`
)

var (
	markerRe = regexp.MustCompile(`@@EQ_(\d{4})@@`)

	// Trailing equation numbers like #(1.1.46) or .\#(1.9.3a). Multi-line
	// anchoring catches numbers sitting before \end{array} on their own
	// line.
	eqNumberRe = regexp.MustCompile(`(?m)[,.\s\\]*\\?#\([0-9]+(?:\.[0-9]+)*[a-z]?\)\s*$`)

	// Empty-group insertion before a second subscript or superscript.
	// The [^{] guard keeps the rewrite from re-firing on its own output.
	doubleScriptRe = regexp.MustCompile(`([^{])\}(_\{|\^\{)`)
)

// ConvertBatch converts all extracted equations with a single structural
// converter invocation. It assembles a minimal synthetic container where
// every equation paragraph is preceded by a marker paragraph, converts
// it, and parses the markers back out of the output.
//
// Equations the converter loses or returns empty are simply absent from
// the result map.
func ConvertBatch(ctx context.Context, conv *pandoc.Converter, records []types.EquationRecord, workDir string) (map[int]string, error) {
	if len(records) == 0 {
		return map[int]string{}, nil
	}

	batchDir := filepath.Join(workDir, "batch")
	wordDir := filepath.Join(batchDir, "word")
	relsDir := filepath.Join(batchDir, "_rels")
	for _, dir := range []string{wordDir, relsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrInternal,
				"cannot create batch workspace", dir, err)
		}
	}

	parts := map[string]string{
		filepath.Join(batchDir, "[Content_Types].xml"): batchContentTypes,
		filepath.Join(relsDir, ".rels"):                batchRels,
		filepath.Join(wordDir, "document.xml"):         buildBatchDocument(records),
	}
	for path, content := range parts {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrInternal,
				"cannot write batch part", path, err)
		}
	}

	batchPath := filepath.Join(workDir, "batch.docx")
	if err := container.Pack(batchDir, batchPath); err != nil {
		return nil, err
	}

	raw, err := conv.Convert(ctx, batchPath, pandoc.Options{
		ExtraArgs: []string{"--wrap=none"},
	})
	if err != nil {
		return nil, err
	}

	result := parseBatchOutput(raw)
	if len(result) < len(records) {
		logger.Warn("batch conversion lost equations",
			logger.Int("expected", len(records)),
			logger.Int("converted", len(result)))
	}
	return result, nil
}

// buildBatchDocument emits the main document part: a marker paragraph
// followed by the raw equation markup for every record. The raw markup
// was serialized with its namespace prefixes intact, so it resolves
// against the declarations on the document element.
func buildBatchDocument(records []types.EquationRecord) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(batchDocumentOpen + "\n")
	b.WriteString("<w:body>\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "<w:p><w:r><w:t xml:space=\"preserve\">@@EQ_%04d@@</w:t></w:r></w:p>\n", rec.Index)
		fmt.Fprintf(&b, "<w:p>%s</w:p>\n", rec.RawMarkup)
	}
	b.WriteString("</w:body></w:document>")
	return b.String()
}

// parseBatchOutput walks the converter output line by line. Each marker
// opens a collection window that runs until the next marker or the end
// of the output; blank edges are trimmed and the equation body is
// unwrapped and cleaned.
func parseBatchOutput(raw string) map[int]string {
	result := make(map[int]string)
	lines := strings.Split(raw, "\n")

	i := 0
	for i < len(lines) {
		m := markerRe.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		idx, _ := strconv.Atoi(m[1])

		var content []string
		i++
		for i < len(lines) && !markerRe.MatchString(lines[i]) {
			content = append(content, lines[i])
			i++
		}
		for len(content) > 0 && strings.TrimSpace(content[0]) == "" {
			content = content[1:]
		}
		for len(content) > 0 && strings.TrimSpace(content[len(content)-1]) == "" {
			content = content[:len(content)-1]
		}

		latex := strings.TrimSpace(strings.Join(content, "\n"))
		latex = stripDelimiters(latex)
		latex = cleanLatex(latex)
		result[idx] = latex
	}
	return result
}

// stripDelimiters removes any $, $$, \(...\) or \[...\] wrapping the
// converter added around an equation body.
func stripDelimiters(latex string) string {
	s := strings.TrimSpace(latex)
	switch {
	case strings.HasPrefix(s, "$$") && strings.HasSuffix(s, "$$") && len(s) >= 4:
		s = strings.TrimSpace(s[2 : len(s)-2])
	case strings.HasPrefix(s, `\[`) && strings.HasSuffix(s, `\]`) && len(s) >= 4:
		s = strings.TrimSpace(s[2 : len(s)-2])
	case strings.HasPrefix(s, "$") && strings.HasSuffix(s, "$") && len(s) >= 2:
		s = strings.TrimSpace(s[1 : len(s)-1])
	case strings.HasPrefix(s, `\(`) && strings.HasSuffix(s, `\)`) && len(s) >= 4:
		s = strings.TrimSpace(s[2 : len(s)-2])
	}
	return s
}

// cleanLatex normalizes a single converted equation body: trailing
// line-break artifacts, trailing equation numbers, and double
// subscripts or superscripts that would not compile.
func cleanLatex(content string) string {
	for i := 0; i < 20; i++ {
		trimmed := strings.TrimRight(content, " \t\r\n")
		if !strings.HasSuffix(trimmed, `\`) {
			content = trimmed
			break
		}
		content = strings.TrimRight(strings.TrimRight(trimmed, `\`), " \t\r\n")
	}

	content = eqNumberRe.ReplaceAllString(content, "")
	content = doubleScriptRe.ReplaceAllString(content, "${1}}{}${2}")

	return strings.TrimSpace(content)
}
