package sanitize

import (
	"strings"
	"testing"

	"docx2md/internal/config"
)

// applyChain runs the passes in pipeline order with default settings.
func applyChain(s string) string {
	cfg := config.Default()
	s = NewCleaner(cfg.Cleanup, ".").Clean(s)
	s = FixUnicode(s, cfg.UnicodeFix)
	s = FixFigures(s)
	s = FixEquations(s)
	s, _ = FixDelimiters(s, cfg.Equations)
	return FinalSanitize(s)
}

func TestChainStable(t *testing.T) {
	in := "# **Bold Heading**\n\n" +
		"Let \\(y = 2\\) and \u2113 appear in\u00a0text.\n\n" +
		"$\\sum_{i = 1}^{n} a_{i}$\n"

	once := applyChain(in)
	twice := applyChain(once)
	if once != twice {
		t.Errorf("chain not stable:\nfirst:  %q\nsecond: %q", once, twice)
	}
	// Spot checks on the first pass.
	for _, want := range []string{
		"# Bold Heading",
		"$y = 2$",
		"$\\ell$",
		"\\sum_{i=1}^{n}",
	} {
		if !strings.Contains(once, want) {
			t.Errorf("output missing %q:\n%s", want, once)
		}
	}
}
