package index

import (
	"context"

	"github.com/glemmtal/alpbot/internal/model"
)

// degradedIndex stands in when no backing store could be initialized.
// Mutations succeed as no-ops that still hand out fresh ids, reads return
// empty results, and nothing ever errors, so components above the index can
// proceed without branching on the failure.
type degradedIndex struct {
	ids *idGen
}

func newDegradedIndex() *degradedIndex {
	return &degradedIndex{ids: newIDGen()}
}

func (d *degradedIndex) Ready() bool { return false }

func (d *degradedIndex) AddBatch(_ context.Context, texts []string, metas []model.Metadata) ([]string, error) {
	if err := validateBatch(texts, metas); err != nil {
		return nil, err
	}
	ids := make([]string, len(texts))
	for i := range ids {
		ids[i] = d.ids.next()
	}
	return ids, nil
}

func (d *degradedIndex) Search(context.Context, string, int, *Filter) ([]model.SearchResult, error) {
	return nil, nil
}

func (d *degradedIndex) Update(context.Context, string, string, model.Metadata) error { return nil }

func (d *degradedIndex) Delete(context.Context, string) error { return nil }

func (d *degradedIndex) DeleteBySource(context.Context, string) error { return nil }

func (d *degradedIndex) Count(context.Context) (int, error) { return 0, nil }

func (d *degradedIndex) GetAll(context.Context) ([]Entry, error) { return nil, nil }

func (d *degradedIndex) Close() error { return nil }
