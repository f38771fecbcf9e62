package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glemmtal/alpbot/internal/index"
)

func writeKnowledgeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImportFile_DerivesThemeAndMetadata(t *testing.T) {
	dir := t.TempDir()
	writeKnowledgeFile(t, dir, "skigebiet.md", "# Pisten\nSkicircus 270 km Pisten.\n## Lifte\nModerne Bahnen.")

	idx := index.NewKeywordIndex()
	l := NewLoader(dir, idx, nil)
	ctx := context.Background()

	ids, err := l.ImportFile(ctx, filepath.Join(dir, "skigebiet.md"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(ids))
	}

	entries, _ := idx.GetAll(ctx)
	for _, e := range entries {
		if e.Passage.Metadata.Theme != "skigebiet" {
			t.Errorf("expected theme skigebiet, got %q", e.Passage.Metadata.Theme)
		}
		if e.Passage.Metadata.SourceFile != "skigebiet.md" {
			t.Errorf("expected source_file skigebiet.md, got %q", e.Passage.Metadata.SourceFile)
		}
	}
	if entries[1].Passage.Metadata.Subheading != "Lifte" {
		t.Errorf("expected subheading Lifte, got %q", entries[1].Passage.Metadata.Subheading)
	}
}

func TestImportFile_ReimportReplacesPassages(t *testing.T) {
	dir := t.TempDir()
	writeKnowledgeFile(t, dir, "skigebiet.md", "# Pisten\nSkicircus 270 km Pisten.")

	idx := index.NewKeywordIndex()
	l := NewLoader(dir, idx, nil)
	ctx := context.Background()
	path := filepath.Join(dir, "skigebiet.md")

	for i := 0; i < 2; i++ {
		if _, err := l.ImportFile(ctx, path); err != nil {
			t.Fatal(err)
		}
	}
	n, _ := idx.Count(ctx)
	if n != 1 {
		t.Fatalf("re-import must replace, not duplicate: count %d", n)
	}
	results, _ := idx.Search(ctx, "pisten", 5, nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result after re-import, got %d", len(results))
	}

	writeKnowledgeFile(t, dir, "skigebiet.md", "# Lifte\nModerne Bahnen.")
	if _, err := l.ImportFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if results, _ := idx.Search(ctx, "pisten", 5, nil); len(results) != 0 {
		t.Errorf("stale passages must not survive a re-import, got %d", len(results))
	}
	if results, _ := idx.Search(ctx, "bahnen", 5, nil); len(results) != 1 {
		t.Errorf("expected the new content to be indexed, got %d", len(results))
	}
}

func TestImportAll_CountsPerFile(t *testing.T) {
	dir := t.TempDir()
	writeKnowledgeFile(t, dir, "wandern.md", "# Wege\nSchöne Wanderwege.")
	writeKnowledgeFile(t, dir, "essen.md", "# Hütten\nKaiserschmarrn.\n# Restaurants\nFeine Küche.")

	idx := index.NewKeywordIndex()
	l := NewLoader(dir, idx, nil)

	counts, err := l.ImportAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts["wandern.md"] != 1 || counts["essen.md"] != 2 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestStatistics_LazyImportOnEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	writeKnowledgeFile(t, dir, "biken.md", "# Trails\nFlowtrails am Reiterkogel.")

	idx := index.NewKeywordIndex()
	l := NewLoader(dir, idx, nil)

	stats, err := l.Statistics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalDocuments != 1 {
		t.Errorf("expected lazy import to index 1 passage, got %d", stats.TotalDocuments)
	}
	if stats.DocumentsByTheme["biken"] != 1 {
		t.Errorf("expected theme tally, got %v", stats.DocumentsByTheme)
	}
	if len(stats.Themes) != 1 || stats.Themes[0] != "biken" {
		t.Errorf("unexpected themes: %v", stats.Themes)
	}
	if len(stats.AvailableFiles) != 1 || stats.AvailableFiles[0] != "biken.md" {
		t.Errorf("unexpected files: %v", stats.AvailableFiles)
	}
}

func TestStatistics_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir, index.NewKeywordIndex(), nil)

	stats, err := l.Statistics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalDocuments != 0 || len(stats.AvailableFiles) != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}

func TestListSourceFiles_OnlyMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeKnowledgeFile(t, dir, "a.md", "# A\ntext")
	writeKnowledgeFile(t, dir, "notes.txt", "ignored")

	l := NewLoader(dir, index.NewKeywordIndex(), nil)
	files, err := l.ListSourceFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.md" {
		t.Errorf("expected only a.md, got %v", files)
	}
}
