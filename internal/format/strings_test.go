package format

import "testing"

func TestNormalizeNumber(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1", "1"},
		{"1_000", "1_000"},
		{"0XAB", "0xAB"},
		{"0xab", "0xAB"},
		{"0xDEAD_beef", "0xDEAD_BEEF"},
		{"0O17", "0o17"},
		{"0B101", "0b101"},
		{"1E5", "1e5"},
		{"1e-5", "1e-5"},
		{"2.5J", "2.5j"},
		{"1_0E3J", "1_0e3j"},
		{"3.14", "3.14"},
	}
	for _, tc := range cases {
		if got := normalizeNumber(tc.in); got != tc.want {
			t.Errorf("normalizeNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeString(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		style QuoteStyle
		want  string
	}{
		{"single to double", `'abc'`, QuoteDouble, `"abc"`},
		{"double stays", `"abc"`, QuoteDouble, `"abc"`},
		{"double to single", `"abc"`, QuoteSingle, `'abc'`},
		{"preserve", `'abc'`, QuotePreserve, `'abc'`},
		{"escapes freed", `'don\'t'`, QuoteDouble, `"don't"`},
		{"escapes added rejected", `'say "hi"'`, QuoteDouble, `'say "hi"'`},
		{"even trade prefers target", `'a "b" \'c\''`, QuoteDouble, `"a \"b\" 'c'"`},
		{"triple kept", `'''abc'''`, QuoteDouble, `'''abc'''`},
		{"triple double kept", `"""abc"""`, QuoteDouble, `"""abc"""`},
		{"prefix lowered", `B'abc'`, QuoteDouble, `b"abc"`},
		{"u dropped", `u'abc'`, QuoteDouble, `"abc"`},
		{"rb lowered", `RB'abc'`, QuoteDouble, `rb"abc"`},
		{"fstring requoted", `f'{a}'`, QuoteDouble, `f"{a}"`},
		{"fstring nested quotes kept", `f'{d["k"]}'`, QuoteDouble, `f'{d["k"]}'`},
		{"raw requoted", `r'a\d'`, QuoteDouble, `r"a\d"`},
		{"raw with target kept", `r'has " inside'`, QuoteDouble, `r'has " inside'`},
		{"empty string", `''`, QuoteDouble, `""`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeString(tc.in, tc.style); got != tc.want {
				t.Errorf("normalizeString(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRequote(t *testing.T) {
	cases := []struct {
		body string
		ok   bool
		want string
	}{
		{"abc", true, "abc"},
		{`don\'t`, true, "don't"},
		{`has " quote`, false, ""},
		{`\' and "`, true, `' and \"`},
		{`\n\t`, true, `\n\t`},
	}
	for _, tc := range cases {
		got, ok := requote(tc.body, '\'', '"')
		if ok != tc.ok {
			t.Errorf("requote(%q) ok = %v, want %v", tc.body, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("requote(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestCanonLiteral(t *testing.T) {
	cases := []struct{ in, want string }{
		{`'abc'`, `"abc"`},
		{`"abc"`, `"abc"`},
		{"0XAB", "0xAB"},
		{"1E5", "1e5"},
	}
	for _, tc := range cases {
		if got := CanonLiteral(tc.in); got != tc.want {
			t.Errorf("CanonLiteral(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if CanonLiteral(`'a'`) != CanonLiteral(`"a"`) {
		t.Error("quote variants must canonicalize identically")
	}
}

func TestNormalizeComment(t *testing.T) {
	cases := []struct{ in, want string }{
		{"#x", "# x"},
		{"# x", "# x"},
		{"#  x", "#  x"},
		{"#", "#"},
		{"#   ", "#"},
		{"#!shebang", "#!shebang"},
		{"#: marker", "#: marker"},
		{"## banner", "## banner"},
		{"# trailing ws   ", "# trailing ws"},
	}
	for _, tc := range cases {
		if got := normalizeComment(tc.in); got != tc.want {
			t.Errorf("normalizeComment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
