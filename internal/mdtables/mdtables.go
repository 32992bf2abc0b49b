// Package mdtables normalizes tables in converted markdown: pipe-table
// headers get a consistent style, and leftover HTML tables are rewritten
// as pipe tables.
package mdtables

import (
	"regexp"
	"strings"

	"docx2md/internal/config"
)

var (
	// Header row, separator row, then any number of data rows.
	pipeTableRe = regexp.MustCompile(`\|[^\n]+\|\n\|[-:| ]+\|\n(?:\|[^\n]+\|\n)*`)

	htmlTableRe = regexp.MustCompile(`(?s)<table[^>]*>(.*?)</table>`)
	htmlRowRe   = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	htmlThRe    = regexp.MustCompile(`(?s)<th[^>]*>(.*?)</th>`)
	htmlTdRe    = regexp.MustCompile(`(?s)<td[^>]*>(.*?)</td>`)
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`)
	wsRunRe     = regexp.MustCompile(`\s+`)
)

// Process normalizes tables per the configuration and returns the
// rewritten content with the number of pipe tables found.
func Process(content string, cfg config.TablesConfig) (string, int) {
	count := len(pipeTableRe.FindAllString(content, -1))
	if cfg.Format == "pipe" {
		content = processPipeTables(content, cfg.HeaderStyle)
	}
	return content, count
}

func processPipeTables(content, headerStyle string) string {
	return pipeTableRe.ReplaceAllStringFunc(content, func(table string) string {
		lines := strings.Split(strings.TrimSpace(table), "\n")
		if headerStyle == "bold" && len(lines) > 0 {
			lines[0] = boldHeaderRow(lines[0])
		}
		return strings.Join(lines, "\n") + "\n"
	})
}

func boldHeaderRow(header string) string {
	cells := strings.Split(header, "|")
	for i, cell := range cells {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			continue
		}
		// An already-bold header stays as it is.
		if strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") {
			cells[i] = " " + trimmed + " "
			continue
		}
		cells[i] = " **" + trimmed + "** "
	}
	return strings.Join(cells, "|")
}

// ConvertHTMLTables rewrites simple HTML tables the structural converter
// passed through verbatim into pipe tables. Tables without rows are left
// untouched.
func ConvertHTMLTables(content string) string {
	return htmlTableRe.ReplaceAllStringFunc(content, func(table string) string {
		inner := htmlTableRe.FindStringSubmatch(table)[1]
		rows := htmlRowRe.FindAllStringSubmatch(inner, -1)
		if len(rows) == 0 {
			return table
		}

		var mdRows []string
		separator := ""
		for i, row := range rows {
			cells := htmlThRe.FindAllStringSubmatch(row[1], -1)
			if len(cells) == 0 {
				cells = htmlTdRe.FindAllStringSubmatch(row[1], -1)
			}
			if len(cells) == 0 {
				continue
			}
			clean := make([]string, 0, len(cells))
			for _, c := range cells {
				cell := htmlTagRe.ReplaceAllString(c[1], "")
				cell = strings.TrimSpace(wsRunRe.ReplaceAllString(cell, " "))
				clean = append(clean, cell)
			}
			mdRows = append(mdRows, "| "+strings.Join(clean, " | ")+" |")
			if i == 0 {
				seps := make([]string, len(clean))
				for j := range seps {
					seps[j] = "---"
				}
				separator = "| " + strings.Join(seps, " | ") + " |"
			}
		}
		if separator != "" && len(mdRows) > 1 {
			mdRows = append(mdRows[:1], append([]string{separator}, mdRows[1:]...)...)
		} else if separator != "" {
			mdRows = append(mdRows, separator)
		}
		return strings.Join(mdRows, "\n")
	})
}
