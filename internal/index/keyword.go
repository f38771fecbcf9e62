package index

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/glemmtal/alpbot/internal/model"
)

var wordPattern = regexp.MustCompile(`\w+`)

// KeywordIndex is the in-memory fallback strategy: passages are scored by
// how many query tokens appear anywhere in their lower-cased text. It holds
// no embeddings and does not persist across restarts.
type KeywordIndex struct {
	mu      sync.RWMutex
	entries []keywordEntry
	ids     *idGen
}

type keywordEntry struct {
	id      string
	passage model.Passage
	lower   string
}

// NewKeywordIndex creates an empty keyword index.
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{ids: newIDGen()}
}

// Ready reports that the index accepts passages.
func (k *KeywordIndex) Ready() bool { return true }

// AddBatch stores the given texts, returning generated ids.
func (k *KeywordIndex) AddBatch(_ context.Context, texts []string, metas []model.Metadata) ([]string, error) {
	if err := validateBatch(texts, metas); err != nil {
		return nil, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	ids := make([]string, len(texts))
	for i, text := range texts {
		ids[i] = k.ids.next()
		k.entries = append(k.entries, keywordEntry{
			id:      ids[i],
			passage: model.Passage{Text: text, Metadata: metas[i].Normalize()},
			lower:   strings.ToLower(text),
		})
	}
	return ids, nil
}

// Search tokenizes the query and ranks passages by the count of query tokens
// present in their text. Zero-match passages are excluded; ties keep
// insertion order.
func (k *KeywordIndex) Search(_ context.Context, query string, limit int, filter *Filter) ([]model.SearchResult, error) {
	if limit <= 0 {
		limit = 3
	}

	tokens := wordPattern.FindAllString(strings.ToLower(query), -1)
	if len(tokens) == 0 {
		return nil, nil
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	var results []model.SearchResult
	for _, e := range k.entries {
		if filter != nil && filter.Theme != "" && e.passage.Metadata.Theme != filter.Theme {
			continue
		}
		matches := 0
		for _, tok := range tokens {
			if strings.Contains(e.lower, tok) {
				matches++
			}
		}
		if matches > 0 {
			results = append(results, model.SearchResult{Passage: e.passage, Score: float64(matches)})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Update replaces the passage with the given id.
func (k *KeywordIndex) Update(_ context.Context, id, text string, meta model.Metadata) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i := range k.entries {
		if k.entries[i].id == id {
			k.entries[i].passage = model.Passage{Text: text, Metadata: meta.Normalize()}
			k.entries[i].lower = strings.ToLower(text)
			return nil
		}
	}
	return errNotFound(id)
}

// Delete removes the passage with the given id.
func (k *KeywordIndex) Delete(_ context.Context, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i := range k.entries {
		if k.entries[i].id == id {
			k.entries = append(k.entries[:i], k.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

// DeleteBySource removes every passage imported from the given source file.
func (k *KeywordIndex) DeleteBySource(_ context.Context, sourceFile string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	kept := k.entries[:0]
	for _, e := range k.entries {
		if e.passage.Metadata.SourceFile != sourceFile {
			kept = append(kept, e)
		}
	}
	k.entries = kept
	return nil
}

// Count returns the number of stored passages.
func (k *KeywordIndex) Count(_ context.Context) (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.entries), nil
}

// GetAll returns every stored entry in insertion order.
func (k *KeywordIndex) GetAll(_ context.Context) ([]Entry, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	entries := make([]Entry, len(k.entries))
	for i, e := range k.entries {
		entries[i] = Entry{ID: e.id, Passage: e.passage}
	}
	return entries, nil
}

// Close is a no-op for the in-memory index.
func (k *KeywordIndex) Close() error { return nil }
