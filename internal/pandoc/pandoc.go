// Package pandoc invokes the external structural converter that turns a
// .docx container into baseline markdown. The converter is a black box:
// this package only builds its argument list, enforces a timeout, and
// captures its output. It is never asked to emit math markup itself; the
// extraction pipeline feeds it math-free containers.
package pandoc

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"docx2md/internal/logger"
	"docx2md/internal/types"
)

// DefaultTimeout bounds a single converter invocation.
const DefaultTimeout = 5 * time.Minute

// Converter runs the external pandoc binary.
type Converter struct {
	binary    string
	extraArgs []string
	timeout   time.Duration
}

// Options adjusts a single conversion call.
type Options struct {
	// MediaDir, when non-empty, receives extracted images
	// (--extract-media).
	MediaDir string
	// ExtraArgs are appended after the converter-level extra args.
	ExtraArgs []string
}

// New creates a Converter. Empty binary falls back to "pandoc"; zero
// timeout falls back to DefaultTimeout.
func New(binary string, extraArgs []string, timeout time.Duration) *Converter {
	if binary == "" {
		binary = "pandoc"
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Converter{
		binary:    binary,
		extraArgs: extraArgs,
		timeout:   timeout,
	}
}

// Available reports whether the converter binary can be found on PATH.
func (c *Converter) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Convert runs the structural converter on the container at inputPath and
// returns its markdown output. Failures are conversion-channel errors: the
// caller decides whether to fall back to direct conversion.
func (c *Converter) Convert(ctx context.Context, inputPath string, opts Options) (string, error) {
	args := []string{inputPath, "-f", "docx", "-t", "markdown"}
	args = append(args, c.extraArgs...)
	if opts.MediaDir != "" {
		args = append(args, "--extract-media="+opts.MediaDir)
	}
	args = append(args, opts.ExtraArgs...)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("invoking structural converter",
		logger.String("binary", c.binary),
		logger.String("input", inputPath))

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = inputPath
		}
		return "", types.NewAppErrorWithDetails(types.ErrConvert,
			"structural converter failed", detail, err)
	}
	return stdout.String(), nil
}
