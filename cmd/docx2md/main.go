// Command docx2md converts Word documents to Markdown with normalized
// LaTeX math. A single .docx input produces one markdown file; a
// directory input converts every document in it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"docx2md/internal/config"
	"docx2md/internal/converter"
	"docx2md/internal/logger"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		output     string
		recursive  bool
		jobs       int
		verbose    bool
		quiet      bool
		logFile    string
	)
	flag.StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	flag.StringVarP(&output, "output", "o", "", "output file (single input) or directory (batch)")
	flag.BoolVarP(&recursive, "recursive", "r", false, "recurse into subdirectories in batch mode")
	flag.IntVarP(&jobs, "jobs", "j", 0, "parallel conversions in batch mode (overrides config)")
	flag.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flag.BoolVarP(&quiet, "quiet", "q", false, "suppress console logging")
	flag.StringVar(&logFile, "log-file", "", "also write logs to this file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		return exitUsage
	}
	input := flag.Arg(0)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docx2md: %v\n", err)
		return exitUsage
	}
	if jobs > 0 {
		cfg.Batch.Concurrency = jobs
	}

	level := logger.LevelInfo
	if verbose {
		level = logger.LevelDebug
	}
	if err := logger.Init(&logger.Config{Level: level, LogFilePath: logFile, Quiet: quiet}); err != nil {
		fmt.Fprintf(os.Stderr, "docx2md: %v\n", err)
		return exitUsage
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := os.Stat(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docx2md: cannot read input: %v\n", err)
		return exitUsage
	}

	c := converter.New(cfg)
	if info.IsDir() {
		return runBatch(ctx, c, input, output, recursive)
	}
	return runSingle(ctx, c, input, output)
}

func runSingle(ctx context.Context, c *converter.Converter, input, output string) int {
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".md"
	}
	res := c.ConvertFile(ctx, input, output)
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !res.Success {
		fmt.Fprintf(os.Stderr, "docx2md: %s: %s\n", input, res.Error)
		return exitError
	}
	fmt.Printf("%s -> %s (%d equations, %d tables)\n",
		input, output, res.Equations, res.Tables)
	return exitOK
}

func runBatch(ctx context.Context, c *converter.Converter, input, output string, recursive bool) int {
	if output == "" {
		output = input
	}
	summary, err := c.ConvertDir(ctx, input, output, recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docx2md: %v\n", err)
		return exitError
	}
	for _, res := range summary.Results {
		if res.Success {
			fmt.Printf("ok   %s -> %s\n", res.InputFile, res.OutputFile)
		} else {
			fmt.Printf("fail %s: %s\n", res.InputFile, res.Error)
		}
	}
	fmt.Printf("%d processed, %d succeeded, %d failed\n",
		summary.FilesProcessed, summary.FilesSucceeded, summary.FilesFailed)
	if summary.FilesFailed > 0 {
		return exitError
	}
	return exitOK
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: docx2md [flags] <input.docx | input-dir>

Converts Word documents to Markdown with normalized LaTeX math.

Flags:
%s`, flag.CommandLine.FlagUsages())
}
