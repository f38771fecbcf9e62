package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/glemmtal/alpbot/internal/embedding"
	"github.com/glemmtal/alpbot/internal/model"
)

// SQLiteIndex implements Index with passages and their embeddings persisted
// in a local SQLite database. Ranking is brute-force cosine distance over all
// stored vectors, which is plenty for a corpus of this size.
type SQLiteIndex struct {
	db       *sql.DB
	embedder embedding.Embedder
	log      *zap.Logger
	ids      *idGen

	// writes are serialized; reads go through the sql pool concurrently
	mu sync.Mutex
}

// NewSQLiteIndex opens or creates the database at the given path.
func NewSQLiteIndex(dbPath string, embedder embedding.Embedder, log *zap.Logger) (*SQLiteIndex, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	s := &SQLiteIndex{db: db, embedder: embedder, log: log, ids: newIDGen()}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteIndex) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS knowledge (
		id          TEXT PRIMARY KEY,
		text        TEXT NOT NULL,
		theme       TEXT NOT NULL DEFAULT '',
		source_file TEXT NOT NULL DEFAULT '',
		heading     TEXT NOT NULL DEFAULT '',
		subheading  TEXT NOT NULL DEFAULT '',
		embedding   BLOB,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_knowledge_theme ON knowledge(theme);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ready reports that the backing store accepted initialization.
func (s *SQLiteIndex) Ready() bool { return true }

// AddBatch embeds and stores the given texts, returning generated ids.
func (s *SQLiteIndex) AddBatch(ctx context.Context, texts []string, metas []model.Metadata) ([]string, error) {
	if err := validateBatch(texts, metas); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	ids := make([]string, len(texts))
	for i, text := range texts {
		meta := metas[i].Normalize()
		ids[i] = s.ids.next()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO knowledge (id, text, theme, source_file, heading, subheading, embedding, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ids[i], text, meta.Theme, meta.SourceFile, meta.Heading, meta.Subheading,
			embedding.Encode(vecs[i]), now)
		if err != nil {
			return nil, fmt.Errorf("insert passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Search embeds the query and returns the limit closest passages by cosine
// distance, ties broken by insertion order.
func (s *SQLiteIndex) Search(ctx context.Context, query string, limit int, filter *Filter) ([]model.SearchResult, error) {
	if limit <= 0 {
		limit = 3
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	where := ""
	var args []any
	if filter != nil && filter.Theme != "" {
		where = " WHERE theme = ?"
		args = append(args, filter.Theme)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT text, theme, source_file, heading, subheading, embedding
		 FROM knowledge`+where+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		var p model.Passage
		var blob []byte
		if err := rows.Scan(&p.Text, &p.Metadata.Theme, &p.Metadata.SourceFile,
			&p.Metadata.Heading, &p.Metadata.Subheading, &blob); err != nil {
			return nil, err
		}
		vec, err := embedding.Decode(blob)
		if err != nil {
			s.log.Warn("skipping passage with corrupt embedding", zap.Error(err))
			continue
		}
		results = append(results, model.SearchResult{
			Passage: p,
			Score:   embedding.CosineDistance(qvec, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Update re-embeds and replaces the passage with the given id.
func (s *SQLiteIndex) Update(ctx context.Context, id, text string, meta model.Metadata) error {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed text: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta = meta.Normalize()
	res, err := s.db.ExecContext(ctx,
		`UPDATE knowledge SET text = ?, theme = ?, source_file = ?, heading = ?, subheading = ?, embedding = ?
		 WHERE id = ?`,
		text, meta.Theme, meta.SourceFile, meta.Heading, meta.Subheading, embedding.Encode(vec), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("passage %s not found", id)
	}
	return nil
}

// Delete removes the passage with the given id.
func (s *SQLiteIndex) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM knowledge WHERE id = ?`, id)
	return err
}

// DeleteBySource removes every passage imported from the given source file.
func (s *SQLiteIndex) DeleteBySource(ctx context.Context, sourceFile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM knowledge WHERE source_file = ?`, sourceFile)
	return err
}

// Count returns the number of stored passages.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge`).Scan(&n)
	return n, err
}

// GetAll returns every stored entry in insertion order.
func (s *SQLiteIndex) GetAll(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, theme, source_file, heading, subheading
		 FROM knowledge ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Passage.Text, &e.Passage.Metadata.Theme,
			&e.Passage.Metadata.SourceFile, &e.Passage.Metadata.Heading,
			&e.Passage.Metadata.Subheading); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}
