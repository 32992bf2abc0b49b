package sanitize

import (
	"strings"
	"testing"

	"docx2md/internal/config"
)

func defaultCleaner() *Cleaner {
	return NewCleaner(config.Default().Cleanup, ".")
}

func TestStripTripleDollarKeepsFirstSpan(t *testing.T) {
	cases := []struct{ in, want string }{
		{"$S_{3}$$groups:$$$ rest", "$S_{3}$ rest"},
		{"$Z_{3}$$Z_{3}$$$ tail", "$Z_{3}$ tail"},
	}
	for _, tc := range cases {
		if got := stripTripleDollar(tc.in); got != tc.want {
			t.Errorf("stripTripleDollar(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripTripleDollarStrayOpener(t *testing.T) {
	got := stripTripleDollar("$$$Unitary$$")
	if got != "$$Unitary$$" {
		t.Errorf("got %q", got)
	}
}

func TestStripTripleDollarRunCollapse(t *testing.T) {
	if got := stripTripleDollar("a$$$$$b"); got != "a$$b" {
		t.Errorf("five dollars: got %q", got)
	}
	if got := stripTripleDollar("a$$$$b"); got != "a$$b" {
		t.Errorf("four dollars: got %q", got)
	}
}

func TestWordLabelInline(t *testing.T) {
	in := `for unitary$$Unitary$$\ U \in \mathbb{C}^{m \times m}`
	want := `for unitary $\ U \in \mathbb{C}^{m \times m}$`
	if got := stripTripleDollar(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDoubleSubscriptFix(t *testing.T) {
	in := `${{\widehat{X}}_{1}}_{1,j}$`
	got := stripTripleDollar(in)
	if !strings.Contains(got, `}_{1}}{}_{1,j}`) {
		t.Errorf("got %q", got)
	}
	if again := stripTripleDollar(got); again != got {
		t.Errorf("not idempotent: %q then %q", got, again)
	}
}

func TestUnderlineSpan(t *testing.T) {
	if got := stripTripleDollar("see [key term]{.underline} here"); got != "see key term here" {
		t.Errorf("got %q", got)
	}
}

func TestMathThenSuperscript(t *testing.T) {
	if got := stripTripleDollar(`$\theta$^n^ = 1`); got != `$\theta^{n}$ = 1` {
		t.Errorf("got %q", got)
	}
}

func TestWordTextLabel(t *testing.T) {
	if got := stripTripleDollar("unitary$Unitary$ matrix"); got != "unitary matrix" {
		t.Errorf("duplicate label kept: %q", got)
	}
	in := "scalar$Vector$ mix"
	if got := stripTripleDollar(in); got != in {
		t.Errorf("mismatched label removed: %q", got)
	}
}

func TestMathGluedToNextWord(t *testing.T) {
	if got := stripTripleDollar("$x+y$and more"); got != "$x+y$ and more" {
		t.Errorf("got %q", got)
	}
}

func TestSpaceAfterOpeningDollar(t *testing.T) {
	if got := stripTripleDollar("value $ n$ here"); got != "value $n$ here" {
		t.Errorf("got %q", got)
	}
	// A closing dollar followed by a space must not trigger the rewrite.
	in := "$x$ and then"
	if got := stripTripleDollar(in); got != in {
		t.Errorf("closing dollar rewritten: %q", got)
	}
}

func TestSanitizeImageAlt(t *testing.T) {
	in := `![caption with $$E=mc^{2}$$ math](img/fig1.png)`
	got := stripTripleDollar(in)
	if !strings.Contains(got, "$E=mc^{2}$") {
		t.Errorf("display math not inlined: %q", got)
	}
	broken := `![bad ${x$ span](img/fig2.png)`
	got = stripTripleDollar(broken)
	if strings.Contains(got, "{x") {
		t.Errorf("unbalanced span kept: %q", got)
	}
}

func TestRemoveTOC(t *testing.T) {
	in := strings.Join([]string{
		"# Table of Contents",
		"",
		"[1 Introduction 3](#introduction)",
		"[2 Methods 7](#methods)",
		"",
		"# Introduction",
		"Body text.",
	}, "\n")
	got := removeTOC(in)
	if strings.Contains(got, "](#") {
		t.Errorf("contents links kept:\n%s", got)
	}
	if !strings.Contains(got, "# Introduction") || !strings.Contains(got, "Body text.") {
		t.Errorf("real content lost:\n%s", got)
	}
}

func TestStripHeadingMarkup(t *testing.T) {
	cases := []struct{ in, want string }{
		{"# ***Title with bold***", "# Title with bold"},
		{"## **Partial bold** remaining text", "## Partial bold remaining text"},
		{"### plain", "### plain"},
	}
	for _, tc := range cases {
		if got := stripHeadingMarkup(tc.in); got != tc.want {
			t.Errorf("stripHeadingMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripHeadingIDs(t *testing.T) {
	cases := []struct{ in, want string }{
		{"# Intro {#word-id}", "# Intro"},
		{"# Refs {#refs-1 .unnumbered}", "# Refs {.unnumbered}"},
		{"# List {#id .TOC-Heading .unnumbered}", "# List {.unnumbered}"},
	}
	for _, tc := range cases {
		if got := stripHeadingIDs(tc.in); got != tc.want {
			t.Errorf("stripHeadingIDs(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanRemovesImageSizeAttrs(t *testing.T) {
	c := defaultCleaner()
	in := `![fig](media/a.png){width="5.0in" height="3.2in"}`
	if got := c.Clean(in); got != "![fig](media/a.png)" {
		t.Errorf("got %q", got)
	}
}

func TestCleanRemovesEmptyArtifacts(t *testing.T) {
	c := defaultCleaner()
	in := "text\n##   \n[]\nmore"
	got := c.Clean(in)
	if strings.Contains(got, "##") || strings.Contains(got, "[]") {
		t.Errorf("artifacts kept: %q", got)
	}
}

func TestCleanIdempotent(t *testing.T) {
	c := defaultCleaner()
	inputs := []string{
		"$S_{3}$$groups:$$$ rest",
		"# ***Bold Title*** {#bold-title}",
		`for unitary$$Unitary$$\ U \in \mathbb{C}$`,
		"value $ n$ here and $x+y$glued",
		`$\theta$^n^ = 1`,
	}
	for _, in := range inputs {
		once := c.Clean(in)
		twice := c.Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent on %q:\n once: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestFinalSanitizeBareCommandSuperscript(t *testing.T) {
	got := FinalSanitize(`where \theta^n^ = 1`)
	if !strings.Contains(got, `$\theta^{n}$`) {
		t.Errorf("got %q", got)
	}
	if again := FinalSanitize(got); again != got {
		t.Errorf("not idempotent: %q then %q", got, again)
	}
}
