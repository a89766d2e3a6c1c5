package format_test

import (
	"errors"
	"strings"
	"testing"

	"pyfmt/internal/format"
	"pyfmt/internal/testkit"
)

func mustFormat(t *testing.T, src string) string {
	t.Helper()
	out, err := format.Source("test.py", []byte(src), format.Default())
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	return out
}

func TestSimpleStatements(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"assign spacing", "x=1\n", "x = 1\n"},
		{"chained assign", "a=b=c\n", "a = b = c\n"},
		{"aug assign", "x+=1\n", "x += 1\n"},
		{"ann assign", "x:int=5\n", "x: int = 5\n"},
		{"ann only", "x:int\n", "x: int\n"},
		{"return value", "def f():\n    return x+1\n", "def f():\n    return x + 1\n"},
		{"bare return", "def f():\n    return\n", "def f():\n    return\n"},
		{"del targets", "del a,b\n", "del a, b\n"},
		{"global", "global a,b\n", "global a, b\n"},
		{"nonlocal", "def f():\n    def g():\n        nonlocal a\n", "def f():\n    def g():\n        nonlocal a\n"},
		{"assert with message", "assert x,'msg'\n", "assert x, \"msg\"\n"},
		{"raise from", "raise ValueError(x) from err\n", "raise ValueError(x) from err\n"},
		{"import stays joined", "import os,sys\n", "import os, sys\n"},
		{"import as", "import numpy as np\n", "import numpy as np\n"},
		{"semicolons split", "a = 1; b = 2\n", "a = 1\nb = 2\n"},
		{"backslash join removed", "x = 1 + \\\n    2\n", "x = 1 + 2\n"},
		{"redundant parens dropped", "x = (1 + 2)\n", "x = 1 + 2\n"},
		{"empty input", "", ""},
		{"pass", "pass\n", "pass\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%q\nwant:\n%q", got, tc.want)
			}
		})
	}
}

func TestExpressions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"binary spacing", "x = a+b*c\n", "x = a + b * c\n"},
		{"precedence parens kept", "x = (a + b) * c\n", "x = (a + b) * c\n"},
		{"unary tight", "x = -y\n", "x = -y\n"},
		{"not spaced", "x = not y\n", "x = not y\n"},
		{"power tight", "x = a**b\n", "x = a**b\n"},
		{"power spaced operand", "x = a ** (b + c)\n", "x = a ** (b + c)\n"},
		{"bool chain", "x = a and b or c\n", "x = a and b or c\n"},
		{"comparison chain", "x = 1 < a < 10\n", "x = 1 < a < 10\n"},
		{"is not", "x = a is not b\n", "x = a is not b\n"},
		{"not in", "x = a not in b\n", "x = a not in b\n"},
		{"conditional", "x = a if cond else b\n", "x = a if cond else b\n"},
		{"lambda", "f = lambda x,y=1:x+y\n", "f = lambda x, y=1: x + y\n"},
		{"attribute chain", "x = a.b.c\n", "x = a.b.c\n"},
		{"number attribute parenthesized", "x = (1).bit_length()\n", "x = (1).bit_length()\n"},
		{"call args", "f(a,b,key=1,*args,**kw)\n", "f(a, b, key=1, *args, **kw)\n"},
		{"subscript", "x = m[k]\n", "x = m[k]\n"},
		{"subscript tuple index", "x = d[1,2]\n", "x = d[1, 2]\n"},
		{"slice tight", "x = a[1 : 2]\n", "x = a[1:2]\n"},
		{"slice step", "x = a[::2]\n", "x = a[::2]\n"},
		{"list", "x = [ 1,2 ]\n", "x = [1, 2]\n"},
		{"set", "x = {1,2}\n", "x = {1, 2}\n"},
		{"dict", "d = {'a':1,'b':2}\n", "d = {\"a\": 1, \"b\": 2}\n"},
		{"dict unpack", "d = {**base,'k':1}\n", "d = {**base, \"k\": 1}\n"},
		{"empty collections", "x = []\ny = {}\nz = ()\n", "x = []\ny = {}\nz = ()\n"},
		{"single element tuple", "x = 1,\n", "x = (1,)\n"},
		{"bare tuple kept bare", "x = 1, 2\n", "x = 1, 2\n"},
		{"parenthesized tuple kept", "x = (1, 2)\n", "x = (1, 2)\n"},
		{"implicit concat", "x = 'a' 'b'\n", "x = \"a\" \"b\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%q\nwant:\n%q", got, tc.want)
			}
		})
	}
}

func TestCompoundStatements(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"if elif else",
			"if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n",
			"if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n",
		},
		{
			"while else",
			"while a:\n    break\nelse:\n    pass\n",
			"while a:\n    break\nelse:\n    pass\n",
		},
		{
			"for else",
			"for i in xs:\n    continue\nelse:\n    pass\n",
			"for i in xs:\n    continue\nelse:\n    pass\n",
		},
		{
			"for tuple target",
			"for k,v in items:\n    pass\n",
			"for k, v in items:\n    pass\n",
		},
		{
			"inline suite expanded",
			"if a: x = 1\n",
			"if a:\n    x = 1\n",
		},
		{
			"class empty bases",
			"class C():\n    pass\n",
			"class C:\n    pass\n",
		},
		{
			"class bases",
			"class C(Base,meta=M):\n    pass\n",
			"class C(Base, meta=M):\n    pass\n",
		},
		{
			"decorators",
			"@dec\n@other(arg)\ndef f():\n    pass\n",
			"@dec\n@other(arg)\ndef f():\n    pass\n",
		},
		{
			"def full params",
			"def f(a,b=1,*args,c:int=2,**kw)->int:\n    pass\n",
			"def f(a, b=1, *args, c: int = 2, **kw) -> int:\n    pass\n",
		},
		{
			"keyword only marker",
			"def f(a,*,b):\n    pass\n",
			"def f(a, *, b):\n    pass\n",
		},
		{
			"positional only marker",
			"def f(a,/,b):\n    pass\n",
			"def f(a, /, b):\n    pass\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestMagicTrailingComma(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"list expands",
			"x = [1, 2,]\n",
			"x = [\n    1,\n    2,\n]\n",
		},
		{
			"list without comma stays flat",
			"x = [1, 2]\n",
			"x = [1, 2]\n",
		},
		{
			"call expands",
			"f(x,)\n",
			"f(\n    x,\n)\n",
		},
		{
			"bare tuple gains parens",
			"x = 1, 2,\n",
			"x = (\n    1,\n    2,\n)\n",
		},
		{
			"params expand",
			"def f(a, b,):\n    pass\n",
			"def f(\n    a,\n    b,\n):\n    pass\n",
		},
		{
			"dict expands",
			"d = {'a': 1,}\n",
			"d = {\n    \"a\": 1,\n}\n",
		},
		{
			"single element tuple is not magic",
			"x = (1,)\n",
			"x = (1,)\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestWidthBoundary(t *testing.T) {
	// "x = f(" is 6 columns, the closing paren one more: an argument of
	// 81 columns lands the line on exactly 88.
	fits := "x = f(" + strings.Repeat("a", 81) + ")\n"
	if got := mustFormat(t, fits); got != fits {
		t.Errorf("88-column line should stay flat:\ngot %q", got)
	}

	over := "x = f(" + strings.Repeat("a", 82) + ")\n"
	want := "x = f(\n    " + strings.Repeat("a", 82) + ",\n)\n"
	if got := mustFormat(t, over); got != want {
		t.Errorf("89-column line should break:\ngot %q\nwant %q", got, want)
	}
}

func TestLongLinesBreak(t *testing.T) {
	a := strings.Repeat("a", 50)
	b := strings.Repeat("b", 50)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"condition gains parens",
			"if " + a + " and " + b + ":\n    pass\n",
			"if (\n    " + a + "\n    and " + b + "\n):\n    pass\n",
		},
		{
			"rhs gains parens",
			"result = " + a + " + " + b + "\n",
			"result = (\n    " + a + "\n    + " + b + "\n)\n",
		},
		{
			"call breaks inside own brackets",
			"result = compute(" + a + ", " + b + ")\n",
			"result = compute(\n    " + a + ",\n    " + b + ",\n)\n",
		},
		{
			"from import breaks with parens",
			"from package.module import " + a + ", " + b + "\n",
			"from package.module import (\n    " + a + ",\n    " + b + ",\n)\n",
		},
		{
			"long string overflows without parens",
			"x = \"" + strings.Repeat("s", 100) + "\"\n",
			"x = \"" + strings.Repeat("s", 100) + "\"\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestCallChains(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"short chain stays flat",
			"x = obj.alpha(1).beta(2)\n",
			"x = obj.alpha(1).beta(2)\n",
		},
		{
			"over-width chain wraps whole when it fits in parens",
			"result = instance.method_one(alpha).method_two(beta).method_three(gamma).method_four(delta)\n",
			"result = (\n    instance.method_one(alpha).method_two(beta).method_three(gamma).method_four(delta)\n)\n",
		},
		{
			"chain breaks before the dots, not inside an argument list",
			"result = instance.method_one(alpha).method_two(betas).method_three(gammas).method_four(deltas)\n",
			"result = (\n    instance.method_one(alpha)\n    .method_two(betas)\n    .method_three(gammas)\n    .method_four(deltas)\n)\n",
		},
		{
			"chain argument breaks inside the enclosing call",
			"x = f(instance.method_one(alpha).method_two(betas).method_three(gammas).method_four(deltas))\n",
			"x = f(\n    instance.method_one(alpha)\n    .method_two(betas)\n    .method_three(gammas)\n    .method_four(deltas),\n)\n",
		},
		{
			"chain target stays flat",
			"instance.registry.entries[key] = compute(value)\n",
			"instance.registry.entries[key] = compute(value)\n",
		},
		{
			"magic comma pins the break inside its call",
			"x = obj.alpha.beta(arg,)\n",
			"x = obj.alpha.beta(\n    arg,\n)\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestWithStatements(t *testing.T) {
	a := strings.Repeat("a", 45)
	b := strings.Repeat("b", 45)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"single item",
			"with open('f') as f:\n    pass\n",
			"with open(\"f\") as f:\n    pass\n",
		},
		{
			"long bare items stay on one line",
			"with " + a + " as first, " + b + " as second:\n    pass\n",
			"with " + a + " as first, " + b + " as second:\n    pass\n",
		},
		{
			"parenthesized items kept when they fit",
			"with (open(\"a\") as f, open(\"b\") as g):\n    pass\n",
			"with (open(\"a\") as f, open(\"b\") as g):\n    pass\n",
		},
		{
			"magic comma expands parenthesized items",
			"with (open(\"a\") as f, open(\"b\") as g,):\n    pass\n",
			"with (\n    open(\"a\") as f,\n    open(\"b\") as g,\n):\n    pass\n",
		},
		{
			"single parenthesized context unwrapped",
			"with (open(\"a\")) as f:\n    pass\n",
			"with open(\"a\") as f:\n    pass\n",
		},
		{
			"backslash continuations collapse to one bare line",
			"with \\\n     make_context_manager1() as cm1, \\\n     make_context_manager2() as cm2, \\\n     make_context_manager3() as cm3, \\\n     make_context_manager4() as cm4 \\\n:\n    pass\n",
			"with make_context_manager1() as cm1, make_context_manager2() as cm2, make_context_manager3() as cm3, make_context_manager4() as cm4:\n    pass\n",
		},
		{
			"comment keeps parentheses expanded",
			"with (open(\"a\") as f,  # primary\n      open(\"b\") as g):\n    pass\n",
			"with (\n    open(\"a\") as f,  # primary\n    open(\"b\") as g,\n):\n    pass\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestBlankLines(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"two around top level def",
			"x = 1\ndef f():\n    pass\ny = 2\n",
			"x = 1\n\n\ndef f():\n    pass\n\n\ny = 2\n",
		},
		{
			"one between methods",
			"class C:\n    def a(self):\n        pass\n    def b(self):\n        pass\n",
			"class C:\n    def a(self):\n        pass\n\n    def b(self):\n        pass\n",
		},
		{
			"excess blanks clamped at top level",
			"x = 1\n\n\n\n\ny = 2\n",
			"x = 1\n\n\ny = 2\n",
		},
		{
			"excess blanks clamped in block",
			"def f():\n    x = 1\n\n\n\n    y = 2\n",
			"def f():\n    x = 1\n\n    y = 2\n",
		},
		{
			"single blank preserved",
			"x = 1\n\ny = 2\n",
			"x = 1\n\ny = 2\n",
		},
		{
			"leading blanks dropped",
			"\n\nx = 1\n",
			"x = 1\n",
		},
		{
			"blank after block preserved",
			"if a:\n    pass\n\n\nx = 1\n",
			"if a:\n    pass\n\n\nx = 1\n",
		},
		{
			"no blank after def colon",
			"def f():\n\n    pass\n",
			"def f():\n    pass\n",
		},
		{
			"comment rides the def separation",
			"x = 1\n# helper\ndef f():\n    pass\n",
			"x = 1\n\n\n# helper\ndef f():\n    pass\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestComments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trailing kept", "x = 1  # note\n", "x = 1  # note\n"},
		{"trailing respaced", "x = 1   #note\n", "x = 1  # note\n"},
		{"leading kept", "# about x\nx = 1\n", "# about x\nx = 1\n"},
		{"comment only file", "# hello\n", "# hello\n"},
		{"shebang untouched", "#!/usr/bin/env python\nx = 1\n", "#!/usr/bin/env python\nx = 1\n"},
		{"marker untouched", "#: type marker\nx = 1\n", "#: type marker\nx = 1\n"},
		{"banner untouched", "## section\nx = 1\n", "## section\nx = 1\n"},
		{"empty comment", "#\nx = 1\n", "#\nx = 1\n"},
		{
			"block tail comment stays indented",
			"if a:\n    pass\n    # tail\nx = 1\n",
			"if a:\n    pass\n    # tail\nx = 1\n",
		},
		{
			"header comment after colon",
			"if a:  # why\n    pass\n",
			"if a:  # why\n    pass\n",
		},
		{
			"comment in call forces break",
			"f(a,  # one\n  b)\n",
			"f(\n    a,  # one\n    b,\n)\n",
		},
		{
			"comment inside empty call",
			"f(\n    # nothing yet\n)\n",
			"f(\n    # nothing yet\n)\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestQuoteAndNumberNormalization(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"single to double", "x = 'hi'\n", "x = \"hi\"\n"},
		{"escape count wins", "x = 'say \"hi\"'\n", "x = 'say \"hi\"'\n"},
		{"escaped quotes unescaped", "x = 'don\\'t'\n", "x = \"don't\"\n"},
		{"triple preserved", "x = '''doc'''\n", "x = '''doc'''\n"},
		{"fstring requoted", "x = f'{a}'\n", "x = f\"{a}\"\n"},
		{"fstring with nested quotes kept", "x = f'{d[\"k\"]}'\n", "x = f'{d[\"k\"]}'\n"},
		{"raw requoted", "x = r'a\\d'\n", "x = r\"a\\d\"\n"},
		{"raw with target quote kept", "x = r'say \"hi\"'\n", "x = r'say \"hi\"'\n"},
		{"prefix lowered", "x = B'abc'\n", "x = b\"abc\"\n"},
		{"u prefix dropped", "x = u'abc'\n", "x = \"abc\"\n"},
		{"hex normalized", "x = 0XAB\n", "x = 0xAB\n"},
		{"hex digits uppercased", "x = 0xab\n", "x = 0xAB\n"},
		{"exponent lowered", "x = 1E5\n", "x = 1e5\n"},
		{"imaginary lowered", "x = 10_000J\n", "x = 10_000j\n"},
		{"octal binary prefixes", "x = 0O17\ny = 0B101\n", "x = 0o17\ny = 0b101\n"},
		{"underscores kept", "x = 1_000_000\n", "x = 1_000_000\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%q\nwant:\n%q", got, tc.want)
			}
		})
	}
}

func TestImportFrom(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"parens dropped when they fit", "from m import (a)\n", "from m import a\n"},
		{"plain list", "from m import a,b\n", "from m import a, b\n"},
		{"star", "from m import *\n", "from m import *\n"},
		{"relative", "from ..pkg import name\n", "from ..pkg import name\n"},
		{"alias", "from m import a as b\n", "from m import a as b\n"},
		{
			"magic comma expands",
			"from m import (a, b,)\n",
			"from m import (\n    a,\n    b,\n)\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFormat(t, tc.in)
			if got != tc.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestCustomConfig(t *testing.T) {
	cfg := format.Config{LineWidth: 30, IndentWidth: 2, Quotes: format.QuoteSingle}
	out, err := format.Source("test.py", []byte("x = frobnicate(alpha_value, beta_value)\n"), cfg)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	want := "x = frobnicate(\n  alpha_value,\n  beta_value,\n)\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}

	out, err = format.Source("test.py", []byte("s = \"abc\"\n"), cfg)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if want := "s = 'abc'\n"; out != want {
		t.Errorf("single quote style: got %q, want %q", out, want)
	}
}

func TestSyntaxErrors(t *testing.T) {
	cases := []string{
		"def f(:\n",
		"x = = 1\n",
		"if a\n    pass\n",
		"x = (1\n",
	}
	for _, src := range cases {
		_, err := format.Source("bad.py", []byte(src), format.Default())
		if err == nil {
			t.Errorf("expected error for %q", src)
			continue
		}
		if !format.IsSyntaxError(err) {
			t.Errorf("expected syntax error for %q, got %v", src, err)
		}
	}
}

func TestSyntaxErrorDetails(t *testing.T) {
	_, err := format.Source("bad.py", []byte("def f(:\n    pass\n"), format.Default())
	var fe *format.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("unexpected error type: %v", err)
	}
	details := fe.Details()
	if details == "" {
		t.Fatal("expected rendered diagnostics")
	}
	if !strings.Contains(details, "bad.py:1:") {
		t.Errorf("details missing position:\n%s", details)
	}
	if !strings.Contains(details, "PYF2") {
		t.Errorf("details missing code:\n%s", details)
	}
}

// Formatter properties: a second pass changes nothing, the output parses
// to the same tree, and every comment survives.
func TestProperties(t *testing.T) {
	a := strings.Repeat("a", 50)
	b := strings.Repeat("b", 50)

	corpus := []struct {
		name string
		src  string
	}{
		{"assign", "x=1\n"},
		{"magic comma", "x = [1, 2,]\n"},
		{"long call", "result = compute(" + a + ", " + b + ")\n"},
		{"long condition", "if " + a + " and " + b + ":\n    pass\n"},
		{"bare tuple", "x = 1, 2,\n"},
		{"with parens", "with (open('a') as f, open('b') as g,):\n    pass\n"},
		{"with bare", "with " + a + " as first, " + b + " as second:\n    pass\n"},
		{"strings", "x = 'hi'\ny = f'{a}'\nz = '''doc'''\n"},
		{"numbers", "x = 0XAB\ny = 1E5\nz = 10_000J\n"},
		{"comments", "# top\nx = 1  # trail\n# lead\ny = 2\n"},
		{"comment in call", "f(a,  # one\n  b)\n"},
		{"block comments", "if a:\n    pass\n    # tail\nx = 1\n"},
		{
			"defs and classes",
			"@dec\ndef f(a, b=1, *args, **kw) -> int:\n    return a\n\n\nclass C(Base):\n    def m(self):\n        pass\n",
		},
		{
			"compound nest",
			"for i in xs:\n    if i:\n        continue\n    else:\n        break\nelse:\n    pass\n",
		},
		{"call chain", "result = instance.method_one(alpha).method_two(betas).method_three(gammas).method_four(deltas)\n"},
		{"from import", "from pkg.mod import (alpha, beta,)\n"},
		{"semicolons", "a = 1; b = 2\n"},
		{"comprehension-free misc", "del a, b\nassert x, 'msg'\nraise E(x) from err\n"},
	}
	for _, tc := range corpus {
		t.Run(tc.name, func(t *testing.T) {
			if err := testkit.CheckAll(tc.name, []byte(tc.src), format.Default()); err != nil {
				t.Error(err)
			}
		})
	}
}
