// Package converter orchestrates the document pipeline: metadata read,
// math extraction, structural conversion, the sanitizer chain, table
// normalization and frontmatter synthesis, ending in an atomic write of
// the markdown output.
package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docx2md/internal/config"
	"docx2md/internal/docmeta"
	"docx2md/internal/extractor"
	"docx2md/internal/frontmatter"
	"docx2md/internal/logger"
	"docx2md/internal/mdtables"
	"docx2md/internal/pandoc"
	"docx2md/internal/sanitize"
	"docx2md/internal/types"
)

// Converter runs the full document pipeline with a fixed configuration.
type Converter struct {
	cfg  *config.Config
	conv *pandoc.Converter
}

// New builds a Converter from cfg.
func New(cfg *config.Config) *Converter {
	return &Converter{
		cfg:  cfg,
		conv: pandoc.New(cfg.Pandoc.Binary, cfg.Pandoc.ExtraArgs, cfg.Pandoc.Timeout),
	}
}

// ConvertFile converts one document. The returned result always carries
// the input and output paths; Success and Error report the outcome
// instead of an error return so batch runs can collect partial failures.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) types.ConversionResult {
	result := types.ConversionResult{
		InputFile:   inputPath,
		OutputFile:  outputPath,
		WorkspaceID: uuid.NewString(),
	}
	fail := func(err error) types.ConversionResult {
		result.Error = err.Error()
		logger.Error("conversion failed", err, logger.String("input", inputPath))
		return result
	}

	if info, err := os.Stat(inputPath); err != nil || info.IsDir() {
		return fail(types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"input file not found", inputPath, err))
	}
	if !strings.EqualFold(filepath.Ext(inputPath), ".docx") {
		return fail(types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"input must be a .docx file", inputPath, nil))
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fail(types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot create output directory", outputDir, err))
	}
	mediaDir := filepath.Join(outputDir, c.cfg.Images.ExtractPath)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return fail(types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot create media directory", mediaDir, err))
	}

	workDir := filepath.Join(os.TempDir(), "docx2md-"+result.WorkspaceID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fail(types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot create workspace", workDir, err))
	}
	defer os.RemoveAll(workDir)

	logger.Info("converting document",
		logger.String("input", inputPath),
		logger.String("output", outputPath))

	props := docmeta.Read(inputPath)

	// Equations are handled by extraction when enabled; a failure anywhere
	// in that path falls back to converting the original document whole.
	var content string
	extractionOK := false
	if c.cfg.Processing.MathExtraction {
		md, res, err := c.runMathPipeline(ctx, inputPath, mediaDir, workDir)
		if err != nil {
			logger.Warn("math extraction failed, falling back to direct conversion",
				logger.Err(err), logger.String("input", inputPath))
			result.MathFallback = true
		} else {
			content = md
			extractionOK = true
			result.Equations = res.Equations
			result.DisplayCount = res.DisplayCount
			result.InlineCount = res.InlineCount
			result.Warnings = append(result.Warnings, res.Warnings...)
		}
	}
	if !extractionOK {
		md, err := c.conv.Convert(ctx, inputPath, pandoc.Options{MediaDir: mediaDir})
		if err != nil {
			return fail(err)
		}
		content = md
	}

	if c.cfg.Processing.Cleanup {
		content = sanitize.NewCleaner(c.cfg.Cleanup, outputDir).Clean(content)
	}
	if c.cfg.Processing.FixUnicode {
		content = sanitize.FixUnicode(content, c.cfg.UnicodeFix)
	}
	if c.cfg.Processing.FixFigures && c.cfg.Figures.Enabled {
		content = sanitize.FixFigures(content)
	}
	// Extracted equations are already clean dollar-delimited LaTeX, so the
	// repair passes below only run on the fallback path.
	if c.cfg.Processing.FixEquations && !extractionOK {
		content = sanitize.FixEquations(content)
	}
	if c.cfg.Processing.FixDelimiters && !extractionOK {
		var stats sanitize.DelimiterStats
		content, stats = sanitize.FixDelimiters(content, c.cfg.Equations)
		result.InlineFixed = stats.InlineOriginal
		result.DisplayFixed = stats.DisplayOriginal
		if result.Equations == 0 {
			result.Equations = stats.InlineOriginal + stats.DisplayOriginal
		}
	}
	if c.cfg.Processing.ProcessTables {
		content = mdtables.ConvertHTMLTables(content)
		content, result.Tables = mdtables.Process(content, c.cfg.Tables)
	}
	if c.cfg.Processing.Cleanup {
		content = sanitize.FinalSanitize(content)
	}

	for _, issue := range sanitize.ValidateMath(content) {
		result.Warnings = append(result.Warnings, issue)
		logger.Warn("math validation issue",
			logger.String("input", inputPath), logger.String("issue", issue))
	}

	if c.cfg.Processing.GenerateFrontMatter {
		block, body, err := frontmatter.Generate(props, c.cfg.FrontMatter, inputPath, content)
		if err != nil {
			return fail(err)
		}
		content = block + body
	}

	if err := writeAtomic(outputPath, []byte(content)); err != nil {
		return fail(err)
	}

	result.Success = true
	logger.Info("conversion completed",
		logger.String("input", inputPath),
		logger.String("output", outputPath),
		logger.Int("equations", result.Equations))
	return result
}

// mathStats carries the extraction-path counters into the result.
type mathStats struct {
	Equations    int
	DisplayCount int
	InlineCount  int
	Warnings     []string
}

// runMathPipeline performs extract, convert and splice. Any error along
// the way aborts the whole path; the caller falls back to direct
// conversion of the untouched document.
func (c *Converter) runMathPipeline(ctx context.Context, inputPath, mediaDir, workDir string) (string, mathStats, error) {
	var stats mathStats

	sanitized, records, err := extractor.Extract(inputPath, workDir)
	if err != nil {
		return "", stats, err
	}
	stats.Equations = len(records)
	for _, rec := range records {
		if rec.Kind == types.KindDisplay {
			stats.DisplayCount++
		} else {
			stats.InlineCount++
		}
	}

	markdown, err := c.conv.Convert(ctx, sanitized, pandoc.Options{MediaDir: mediaDir})
	if err != nil {
		return "", stats, err
	}

	latex, err := extractor.ConvertBatch(ctx, c.conv, records, workDir)
	if err != nil {
		return "", stats, err
	}

	markdown, warnings := extractor.Splice(markdown, records, latex, c.cfg.Equations.WideThreshold)
	stats.Warnings = warnings
	return markdown, stats, nil
}

// writeAtomic writes data through a temp file in the destination
// directory so readers never observe a partial output.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".out-*.md")
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot create temp output", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot write output", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot close output", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot move output into place", path, err)
	}
	return nil
}
