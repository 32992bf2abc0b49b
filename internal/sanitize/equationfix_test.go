package sanitize

import "testing"

func TestFixEquationsSumBounds(t *testing.T) {
	got := FixEquations(`$\sum_{}^{}i = 1^{n}x_{i}$`)
	want := `$\sum_{i=1}^{n}x_{i}$`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixEquationsOperatorWordSubscript(t *testing.T) {
	cases := []struct{ in, want string }{
		{`$\sum_{row}^{}a$`, `$\sum_{\text{row}}a$`},
		{`$\prod_{col}^{}b$`, `$\prod_{\text{col}}b$`},
	}
	for _, tc := range cases {
		if got := FixEquations(tc.in); got != tc.want {
			t.Errorf("FixEquations(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFixEquationsSingleLetterSubscript(t *testing.T) {
	// Single letters are variables and keep their subscript; only the
	// empty superscript goes.
	got := FixEquations(`$\sum_{n}^{}a_{n}$`)
	want := `$\sum_{n}a_{n}$`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixEquationsEmptySuperscript(t *testing.T) {
	got := FixEquations(`$\lim_{x}^{}f(x)$`)
	want := `$\lim_{x}f(x)$`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixEquationsSymbolFallbacks(t *testing.T) {
	if got := FixEquations(`$\hslash \omega$`); got != `$\hbar \omega$` {
		t.Errorf("hslash: got %q", got)
	}
	if got := FixEquations(`$\mathbb{c}$`); got != `$\mathbf{c}$` {
		t.Errorf("lowercase blackboard: got %q", got)
	}
	if got := FixEquations(`$\mathbb{R}$`); got != `$\mathbb{R}$` {
		t.Errorf("uppercase blackboard must stay: got %q", got)
	}
}

func TestFixEquationsTextUntouched(t *testing.T) {
	in := `The literal \hslash outside math stays, but $\hslash$ changes.`
	got := FixEquations(in)
	want := `The literal \hslash outside math stays, but $\hbar$ changes.`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixEquationsIdempotent(t *testing.T) {
	inputs := []string{
		`$\sum_{}^{}i = 1^{n}x_{i}$`,
		`$\sum_{row}^{}a$`,
		`$\hslash + \mathbb{c}$`,
	}
	for _, in := range inputs {
		once := FixEquations(in)
		twice := FixEquations(once)
		if once != twice {
			t.Errorf("not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}
