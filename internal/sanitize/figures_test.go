package sanitize

import (
	"strings"
	"testing"
)

func TestFixFiguresPromotesCaption(t *testing.T) {
	in := strings.Join([]string{
		"![A diagram of shapes](media/image1.png)",
		"",
		"***Figure 1.*** *The unit circle* $S^1$ *embedded in the plane.*",
		"",
		"Following paragraph.",
	}, "\n")
	got := FixFigures(in)

	if strings.Contains(got, "A diagram of shapes") {
		t.Errorf("generated alt text kept:\n%s", got)
	}
	if !strings.Contains(got, "![Figure 1. The unit circle $S^1$ embedded in the plane.](media/image1.png)") {
		t.Errorf("caption not promoted:\n%s", got)
	}
	if strings.Count(got, "Figure 1.") != 1 {
		t.Errorf("caption paragraph not removed:\n%s", got)
	}
	if !strings.Contains(got, "Following paragraph.") {
		t.Errorf("trailing content lost:\n%s", got)
	}
}

func TestFixFiguresNoCaptionLeavesImage(t *testing.T) {
	in := "![alt text](media/a.png)\n\nJust a normal paragraph."
	if got := FixFigures(in); got != in {
		t.Errorf("content changed without a caption:\n%s", got)
	}
}

func TestFixFiguresMultilineCaption(t *testing.T) {
	in := "![alt](m/a.png)\n\n*Figure 2.* Spanning\ntwo lines."
	got := FixFigures(in)
	if !strings.Contains(got, "![Figure 2. Spanning two lines.](m/a.png)") {
		t.Errorf("wrapped caption not collapsed:\n%s", got)
	}
}

func TestFixFiguresCaptionMathSanitized(t *testing.T) {
	in := "![alt](m/a.png)\n\n*Figure 3.* Display $$E=mc^{2}$$ and broken ${x$ span."
	got := FixFigures(in)
	if !strings.Contains(got, "$E=mc^{2}$") {
		t.Errorf("display math not inlined in caption:\n%s", got)
	}
	if strings.Contains(got, "{x") {
		t.Errorf("unbalanced math span kept in caption:\n%s", got)
	}
}

func TestFixFiguresIdempotent(t *testing.T) {
	in := "![alt](m/a.png)\n\n***Figure 4.*** The caption.\n\nBody."
	once := FixFigures(in)
	twice := FixFigures(once)
	if once != twice {
		t.Errorf("not idempotent:\n once: %q\ntwice: %q", once, twice)
	}
}
