package project

import (
	"os"
	"path/filepath"
	"testing"

	"pyfmt/internal/format"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, "[format]\nline-width = 100\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindConfig(nested)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestFindConfigNearestWins(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[format]\nline-width = 100\n")
	inner := filepath.Join(root, "sub")
	if err := os.MkdirAll(inner, 0o755); err != nil {
		t.Fatal(err)
	}
	want := writeManifest(t, inner, "[format]\nline-width = 72\n")

	path, ok, err := FindConfig(inner)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if path != want {
		t.Errorf("path = %q, want inner manifest %q", path, want)
	}
}

func TestFindConfigAbsent(t *testing.T) {
	_, ok, err := FindConfig(t.TempDir())
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if ok {
		t.Error("empty tree must not find a manifest")
	}
}

func TestLoadFullManifest(t *testing.T) {
	path := writeManifest(t, t.TempDir(),
		"[format]\nline-width = 100\nindent-width = 2\nquotes = \"single\"\ntarget-version = \"py312\"\n")
	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, err := m.FormatConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.LineWidth != 100 || cfg.IndentWidth != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Quotes != format.QuoteSingle || cfg.TargetVersion != "py312" {
		t.Errorf("cfg = %+v", cfg)
	}
	if m.Root != filepath.Dir(path) {
		t.Errorf("root = %q", m.Root)
	}
}

func TestLoadMissingKeysKeepDefaults(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[format]\nline-width = 100\n")
	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, err := m.FormatConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Quotes != format.QuoteDouble {
		t.Errorf("quotes = %v, want default double", cfg.Quotes)
	}
	if got := cfg.Fingerprint(); got != "w100:i4:qdouble:v" {
		t.Errorf("fingerprint = %q", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[format]\nline-wdith = 100\n")
	if _, err := Load(path); err == nil {
		t.Error("misspelled key must be rejected")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for _, body := range []string{
		"[format]\nline-width = 10\n",
		"[format]\nindent-width = 99\n",
		"[format]\nquotes = \"fancy\"\n",
		"[format]\ntarget-version = \"py27\"\n",
		"[format]\nline-width = \"wide\"\n",
	} {
		path := writeManifest(t, t.TempDir(), body)
		if _, err := Load(path); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[format]\nindent-width = 2\n")

	m, ok, err := Discover(root)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	cfg, err := m.FormatConfig()
	if err != nil || cfg.IndentWidth != 2 {
		t.Errorf("cfg = %+v, err = %v", cfg, err)
	}

	if _, ok, err := Discover(t.TempDir()); err != nil || ok {
		t.Errorf("bare dir: ok=%v err=%v", ok, err)
	}
}

func TestHashing(t *testing.T) {
	if HashBytes([]byte("a")) == HashBytes([]byte("b")) {
		t.Error("different inputs must digest differently")
	}
	if HashBytes([]byte("a")) != HashBytes([]byte("a")) {
		t.Error("digest must be deterministic")
	}
	if Combine([]byte("a"), []byte("b")) != Combine([]byte("a"), []byte("b")) {
		t.Error("composite digest must be deterministic")
	}
	if Combine([]byte("a"), []byte("b")) == Combine([]byte("b"), []byte("a")) {
		t.Error("part order must matter")
	}
}
