package sanitize

import (
	"strings"
	"testing"

	"docx2md/internal/config"
)

func TestFixDelimiters(t *testing.T) {
	eq := config.Default().Equations
	in := `Inline \(x + y\) and display \[E = mc^{2}\] forms.`
	got, stats := FixDelimiters(in, eq)

	if !strings.Contains(got, "$x + y$") {
		t.Errorf("inline pair not applied: %q", got)
	}
	if !strings.Contains(got, "$$E = mc^{2}$$") {
		t.Errorf("display pair not applied: %q", got)
	}
	if stats.InlineOriginal != 1 || stats.DisplayOriginal != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFixDelimitersMultiline(t *testing.T) {
	in := "\\[\na = b \\\\\nc = d\n\\]"
	got, _ := FixDelimiters(in, config.Default().Equations)
	if !strings.HasPrefix(got, "$$\n") || !strings.HasSuffix(got, "\n$$") {
		t.Errorf("multiline display not rewritten: %q", got)
	}
}

func TestFixDelimitersNoMath(t *testing.T) {
	in := "plain prose only"
	got, stats := FixDelimiters(in, config.Default().Equations)
	if got != in || stats.InlineOriginal != 0 || stats.DisplayOriginal != 0 {
		t.Errorf("got %q, stats %+v", got, stats)
	}
}

func TestValidateMath(t *testing.T) {
	clean := `Good $x_{1}$ and $$\begin{array}{r}a\end{array}$$ here.`
	if issues := ValidateMath(clean); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}

	bad := `Broken $x_{1$ span.`
	issues := ValidateMath(bad)
	if len(issues) == 0 {
		t.Error("unbalanced braces not reported")
	}

	badEnv := `$$\begin{array}{r}a$$`
	if issues := ValidateMath(badEnv); len(issues) == 0 {
		t.Error("unmatched environment not reported")
	}
}
