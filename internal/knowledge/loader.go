// Package knowledge discovers markdown source files, chunks them and
// populates the retrieval index.
package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/glemmtal/alpbot/internal/chunker"
	"github.com/glemmtal/alpbot/internal/index"
	"github.com/glemmtal/alpbot/internal/model"
)

// DefaultDir is the primary knowledge directory.
const DefaultDir = "knowledge"

// Stats summarizes the indexed corpus.
type Stats struct {
	TotalDocuments   int            `json:"total_documents"`
	DocumentsByTheme map[string]int `json:"documents_by_theme"`
	Themes           []string       `json:"themes"`
	AvailableFiles   []string       `json:"available_files"`
}

// Loader imports knowledge files into an index.
type Loader struct {
	dir  string
	idx  index.Index
	opts chunker.Options
	log  *zap.Logger
}

// NewLoader creates a loader over the given index. The knowledge directory
// falls back to <cwd>/knowledge when dir does not exist, which covers
// deployments with differing working directories.
func NewLoader(dir string, idx index.Index, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if cwd, cerr := os.Getwd(); cerr == nil {
			alt := filepath.Join(cwd, DefaultDir)
			if _, aerr := os.Stat(alt); aerr == nil {
				log.Info("knowledge dir missing, using fallback", zap.String("dir", alt))
				dir = alt
			}
		}
	}
	return &Loader{dir: dir, idx: idx, opts: chunker.DefaultOptions(), log: log}
}

// Dir returns the resolved knowledge directory.
func (l *Loader) Dir() string { return l.dir }

// ListSourceFiles returns the markdown files in the knowledge directory,
// sorted by name.
func (l *Loader) ListSourceFiles() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(l.dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// loadDocument reads one source file; the theme is the filename minus its
// extension.
func loadDocument(path string) (model.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, err
	}
	name := filepath.Base(path)
	return model.Document{
		Theme:      strings.TrimSuffix(name, filepath.Ext(name)),
		SourceFile: name,
		Content:    string(content),
	}, nil
}

// ImportFile chunks one file and batch-inserts its passages. Passages from
// an earlier import of the same file are removed first, so re-importing is
// idempotent and a watched file never accumulates duplicates.
func (l *Loader) ImportFile(ctx context.Context, path string) ([]string, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}

	if err := l.idx.DeleteBySource(ctx, doc.SourceFile); err != nil {
		return nil, err
	}

	sections := chunker.Split(doc.Content, l.opts)
	if len(sections) == 0 {
		return nil, nil
	}

	texts := make([]string, len(sections))
	metas := make([]model.Metadata, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
		metas[i] = model.Metadata{
			Theme:      doc.Theme,
			SourceFile: doc.SourceFile,
			Heading:    s.Heading,
			Subheading: s.Subheading,
		}.Normalize()
	}

	ids, err := l.idx.AddBatch(ctx, texts, metas)
	if err != nil {
		return nil, err
	}
	l.log.Info("imported knowledge file",
		zap.String("file", doc.SourceFile), zap.Int("passages", len(ids)))
	return ids, nil
}

// ImportAll imports every source file and returns passage counts per file.
// A failing file is logged and skipped; the remaining files still import.
func (l *Loader) ImportAll(ctx context.Context) (map[string]int, error) {
	paths, err := l.ListSourceFiles()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(paths))
	for _, path := range paths {
		ids, err := l.ImportFile(ctx, path)
		if err != nil {
			l.log.Error("import failed", zap.String("file", path), zap.Error(err))
			continue
		}
		counts[filepath.Base(path)] = len(ids)
	}
	return counts, nil
}

// Statistics tallies the indexed corpus by theme. When the index is empty
// but source files exist, a full import runs first so a fresh deployment
// heals itself on the first read.
func (l *Loader) Statistics(ctx context.Context) (*Stats, error) {
	count, err := l.idx.Count(ctx)
	if err != nil {
		return nil, err
	}

	files, err := l.ListSourceFiles()
	if err != nil {
		return nil, err
	}

	if count == 0 && len(files) > 0 && l.idx.Ready() {
		l.log.Info("index empty, importing knowledge corpus")
		if _, err := l.ImportAll(ctx); err != nil {
			return nil, err
		}
		count, err = l.idx.Count(ctx)
		if err != nil {
			return nil, err
		}
	}

	entries, err := l.idx.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byTheme := map[string]int{}
	for _, e := range entries {
		byTheme[e.Passage.Metadata.Theme]++
	}
	themes := make([]string, 0, len(byTheme))
	for theme := range byTheme {
		themes = append(themes, theme)
	}
	sort.Strings(themes)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}

	return &Stats{
		TotalDocuments:   count,
		DocumentsByTheme: byTheme,
		Themes:           themes,
		AvailableFiles:   names,
	}, nil
}
