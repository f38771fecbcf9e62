// Package index provides the knowledge retrieval index with two
// interchangeable strategies: vector-embedding search backed by SQLite and
// in-memory keyword-overlap search. When neither backing can be initialized
// the index runs degraded: mutations are accepted as no-ops and reads return
// empty results, so callers never special-case a broken backend.
package index

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/glemmtal/alpbot/internal/embedding"
	"github.com/glemmtal/alpbot/internal/model"
)

// Entry is a stored passage plus its generated identifier.
type Entry struct {
	ID      string        `json:"id"`
	Passage model.Passage `json:"passage"`
}

// Filter restricts a search to passages with matching metadata.
type Filter struct {
	Theme string
}

// Index is the retrieval index contract. Implementations rank results before
// returning them; Ready reports whether the backend accepted initialization.
type Index interface {
	AddBatch(ctx context.Context, texts []string, metas []model.Metadata) ([]string, error)
	Search(ctx context.Context, query string, limit int, filter *Filter) ([]model.SearchResult, error)
	Update(ctx context.Context, id, text string, meta model.Metadata) error
	Delete(ctx context.Context, id string) error
	DeleteBySource(ctx context.Context, sourceFile string) error
	Count(ctx context.Context) (int, error)
	GetAll(ctx context.Context) ([]Entry, error)
	Ready() bool
	Close() error
}

// Options configures index construction.
type Options struct {
	Dir      string // storage directory for the vector strategy
	Embedder embedding.Embedder
	Logger   *zap.Logger
}

// Open probes capabilities once and returns the best available index.
// With an embedder present it opens the persistent SQLite-backed vector
// index; without one it falls back to in-memory keyword search. A storage
// failure yields a degraded index rather than an error.
func Open(opts Options) Index {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if opts.Embedder == nil {
		log.Info("no embedding backend configured, using keyword search")
		return NewKeywordIndex()
	}

	dir := opts.Dir
	if dir == "" {
		dir = ResolveDir()
	}
	idx, err := NewSQLiteIndex(filepath.Join(dir, "knowledge.db"), opts.Embedder, log)
	if err != nil {
		log.Error("vector index unavailable, running degraded", zap.Error(err))
		return newDegradedIndex()
	}
	log.Info("vector index ready", zap.String("dir", dir))
	return idx
}

// ResolveDir picks a writable storage directory: the system temp directory
// first, then a dot directory under the working directory.
func ResolveDir() string {
	primary := filepath.Join(os.TempDir(), "alpbot_db")
	if writable(primary) {
		return primary
	}
	return filepath.Join(".", ".alpbot")
}

func writable(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe := filepath.Join(dir, ".probe")
	f, err := os.Create(probe)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probe)
	return true
}

// idGen produces sortable unique identifiers in insertion order. The
// entropy source is not safe for concurrent use, so next serializes access.
type idGen struct {
	mu      sync.Mutex
	entropy *rand.Rand
}

func newIDGen() *idGen {
	return &idGen{entropy: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (g *idGen) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

func validateBatch(texts []string, metas []model.Metadata) error {
	if len(texts) != len(metas) {
		return fmt.Errorf("texts and metadatas length mismatch: %d vs %d", len(texts), len(metas))
	}
	return nil
}

func errNotFound(id string) error {
	return fmt.Errorf("passage %s not found", id)
}
