package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Strob0t/ContextForge/internal/domain/rules"
)

func testTable() *rules.Table {
	return &rules.Table{
		Rules: []rules.Rule{
			{Language: "python", FilePatterns: []string{"requirements.txt", "*.py"}},
			{Language: "flutter", FilePatterns: []string{"pubspec.yaml", "*.dart"}},
		},
		Priority: []string{"flutter", "python"},
	}
}

func TestDetectType(t *testing.T) {
	table := testTable()

	t.Run("matches top level files", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := DetectType(dir, table); got != "python" {
			t.Errorf("type = %q, want python", got)
		}
	})

	t.Run("sees one nested level", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "lib")
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(sub, "main.dart"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := DetectType(dir, table); got != "flutter" {
			t.Errorf("type = %q, want flutter", got)
		}
	})

	t.Run("does not see two nested levels", func(t *testing.T) {
		dir := t.TempDir()
		deep := filepath.Join(dir, "a", "b")
		if err := os.MkdirAll(deep, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(deep, "main.py"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := DetectType(dir, table); got != Unknown {
			t.Errorf("type = %q, want %q", got, Unknown)
		}
	})

	t.Run("hidden entries are skipped", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".hidden.py"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := DetectType(dir, table); got != Unknown {
			t.Errorf("type = %q, want %q", got, Unknown)
		}
	})

	t.Run("priority decides over confidence", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{"a.py", "b.py", "c.py", "pubspec.yaml"} {
			if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		if got := DetectType(dir, table); got != "flutter" {
			t.Errorf("type = %q, want flutter", got)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		if got := DetectType(t.TempDir(), &rules.Table{}); got != Unknown {
			t.Errorf("type = %q, want %q", got, Unknown)
		}
	})
}

func TestIndexMarshal(t *testing.T) {
	idx := &Index{Projects: map[string]Entry{
		"beta":  {Type: "python", Path: "beta"},
		"alpha": {Type: "flutter", Path: "alpha"},
	}}

	data, err := idx.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	if !strings.HasPrefix(text, Header) {
		t.Errorf("missing header: %s", text)
	}
	// Keys are sorted, so alpha must precede beta.
	if strings.Index(text, "alpha") > strings.Index(text, "beta") {
		t.Errorf("keys not sorted:\n%s", text)
	}

	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(back.Projects) != 2 {
		t.Fatalf("projects = %v", back.Projects)
	}
	if back.Projects["beta"].Type != "python" {
		t.Errorf("beta = %+v", back.Projects["beta"])
	}
}

func TestParseEmpty(t *testing.T) {
	idx, err := Parse([]byte(""))
	if err != nil {
		t.Fatal(err)
	}
	if idx.Projects == nil || len(idx.Projects) != 0 {
		t.Errorf("projects = %v, want empty map", idx.Projects)
	}
}
