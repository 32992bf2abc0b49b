package converter

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"docx2md/internal/logger"
	"docx2md/internal/types"
)

// ConvertDir converts every .docx document under inputDir, mirroring the
// directory layout below outputDir. One failing document never stops the
// others; its failure is recorded in the summary.
func (c *Converter) ConvertDir(ctx context.Context, inputDir, outputDir string, recursive bool) (*types.BatchSummary, error) {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"input directory not found", inputDir, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInternal,
			"cannot create output directory", outputDir, err)
	}

	inputs, err := findDocuments(inputDir, recursive)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		logger.Warn("no .docx files found", logger.String("dir", inputDir))
		return &types.BatchSummary{}, nil
	}
	logger.Info("starting batch conversion",
		logger.Int("files", len(inputs)),
		logger.Int("concurrency", c.cfg.Batch.Concurrency))

	results := make([]types.ConversionResult, len(inputs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Batch.Concurrency)
	for i, input := range inputs {
		g.Go(func() error {
			rel, err := filepath.Rel(inputDir, input)
			if err != nil {
				rel = filepath.Base(input)
			}
			output := filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".md")
			res := c.ConvertFile(gctx, input, output)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures live in their results.
	_ = g.Wait()

	summary := &types.BatchSummary{
		FilesProcessed: len(results),
		Results:        results,
	}
	for _, r := range results {
		if r.Success {
			summary.FilesSucceeded++
		} else {
			summary.FilesFailed++
		}
	}
	logger.Info("batch conversion finished",
		logger.Int("succeeded", summary.FilesSucceeded),
		logger.Int("failed", summary.FilesFailed))
	return summary, nil
}

// findDocuments lists .docx files under dir in sorted order. Temp-file
// artifacts (names starting with ~$) are skipped.
func findDocuments(dir string, recursive bool) ([]string, error) {
	var found []string

	add := func(path string, name string) {
		if strings.HasPrefix(name, "~$") {
			return
		}
		if strings.EqualFold(filepath.Ext(name), ".docx") {
			found = append(found, path)
		}
	}

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(path, d.Name())
			}
			return nil
		})
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrInternal,
				"cannot walk input directory", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrInternal,
				"cannot read input directory", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				add(filepath.Join(dir, e.Name()), e.Name())
			}
		}
	}
	sort.Strings(found)
	return found, nil
}
