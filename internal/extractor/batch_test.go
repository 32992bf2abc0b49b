package extractor

import (
	"strings"
	"testing"

	"docx2md/internal/types"
)

func TestParseBatchOutput(t *testing.T) {
	raw := strings.Join([]string{
		"@@EQ_0000@@",
		"",
		"$$E = mc^{2}$$",
		"",
		"@@EQ_0001@@",
		"",
		"$x + y$",
		"",
		"@@EQ_0003@@",
		"\\[\\alpha \\leq \\beta\\]",
	}, "\n")

	got := parseBatchOutput(raw)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0] != "E = mc^{2}" {
		t.Errorf("eq 0 = %q", got[0])
	}
	if got[1] != "x + y" {
		t.Errorf("eq 1 = %q", got[1])
	}
	if got[3] != `\alpha \leq \beta` {
		t.Errorf("eq 3 = %q", got[3])
	}
	if _, ok := got[2]; ok {
		t.Error("eq 2 should be absent")
	}
}

func TestParseBatchOutputLeadingNoise(t *testing.T) {
	raw := "stray preamble text\n\n@@EQ_0000@@\n\n$a$\n"
	got := parseBatchOutput(raw)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0] != "a" {
		t.Errorf("eq 0 = %q", got[0])
	}
}

func TestParseBatchOutputMultiline(t *testing.T) {
	raw := "@@EQ_0000@@\n\n$$\\begin{array}{r}\na = b \\\\\nc = d\n\\end{array}$$\n"
	got := parseBatchOutput(raw)
	want := "\\begin{array}{r}\na = b \\\\\nc = d\n\\end{array}"
	if got[0] != want {
		t.Errorf("got %q, want %q", got[0], want)
	}
}

func TestStripDelimiters(t *testing.T) {
	cases := []struct{ in, want string }{
		{"$$x$$", "x"},
		{"$x$", "x"},
		{`\[x\]`, "x"},
		{`\(x\)`, "x"},
		{"x", "x"},
		{"$$", "$$"},
		{"$", "$"},
	}
	for _, tc := range cases {
		if got := stripDelimiters(tc.in); got != tc.want {
			t.Errorf("stripDelimiters(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanLatexTrailingBackslashes(t *testing.T) {
	got := cleanLatex("x = y \\\\ \n")
	if got != "x = y" {
		t.Errorf("got %q", got)
	}
}

func TestCleanLatexEquationNumbers(t *testing.T) {
	cases := []struct{ in, want string }{
		{`x = y,\ \#(1.1.46)`, "x = y"},
		{"a = b #(2.3)", "a = b"},
		{"c = d \\#(1.1.13a)", "c = d"},
		{"\\begin{array}{r}\nE = mc^{2} \\#(1.9)\n\\end{array}", "\\begin{array}{r}\nE = mc^{2}\n\\end{array}"},
	}
	for _, tc := range cases {
		if got := cleanLatex(tc.in); got != tc.want {
			t.Errorf("cleanLatex(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanLatexDoubleScripts(t *testing.T) {
	got := cleanLatex(`x_{a}_{b} + y^{c}^{d}`)
	want := `x_{a}{}_{b} + y^{c}{}^{d}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCleanLatexIdempotent(t *testing.T) {
	inputs := []string{
		`x_{a}_{b}`,
		`y^{c}^{d}`,
		`x = y,\ \#(1.1.46)`,
		`\sum_{i}^{n} x_{i}`,
	}
	for _, in := range inputs {
		once := cleanLatex(in)
		twice := cleanLatex(once)
		if once != twice {
			t.Errorf("cleanLatex not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestBuildBatchDocument(t *testing.T) {
	records := []types.EquationRecord{
		{Index: 0, Kind: types.KindDisplay, RawMarkup: "<m:oMathPara><m:oMath/></m:oMathPara>"},
		{Index: 1, Kind: types.KindInline, RawMarkup: "<m:oMath/>"},
	}
	doc := buildBatchDocument(records)

	for _, want := range []string{
		"@@EQ_0000@@",
		"@@EQ_0001@@",
		"<w:p><m:oMathPara><m:oMath/></m:oMathPara></w:p>",
		"<w:p><m:oMath/></w:p>",
		`xml:space="preserve"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("batch document missing %q", want)
		}
	}
	if !strings.HasSuffix(doc, "</w:body></w:document>") {
		t.Error("batch document not closed")
	}
	marker := strings.Index(doc, "@@EQ_0000@@")
	body := strings.Index(doc, "<w:p><m:oMathPara>")
	if marker > body {
		t.Error("marker paragraph must precede its equation paragraph")
	}
}
