package mdql

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestQueryEndToEndTSV(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\ntags: [example]\n---\n# A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := Query(context.Background(), Options{
		Query: `SELECT file.name FROM FRONTMATTER_DATA("` + dir + `")`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out == "" {
		t.Fatalf("expected non-empty TSV output")
	}
}

func TestQueryEndToEndJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\ntags: [example]\n---\n# A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := Query(context.Background(), Options{
		Query: `SELECT file.name FROM FRONTMATTER_DATA("` + dir + `")`,
		JSON:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out == "" || out[0] != '[' {
		t.Fatalf("expected a JSON array, got %q", out)
	}
}

func TestFindListsSnippets(t *testing.T) {
	dir := t.TempDir()
	content := "```krafna\nSELECT 1\n```\n"
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := Find(context.Background(), dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if out != "SELECT 1" {
		t.Fatalf("got %q", out)
	}
}
