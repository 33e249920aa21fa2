package repository

import (
	"context"

	"github.com/redlinehq/redline/pkg/model"
)

// Repository defines the interface for the snippet store. Inserts are
// append-only: there is no update or delete, and no uniqueness
// constraint on original text.
type Repository interface {
	// InsertSnippet appends a snippet record
	InsertSnippet(ctx context.Context, snippet *model.SnippetRecord) error

	// ListSnippets retrieves every snippet record. Acceptable only
	// while the collection stays small; there is no pagination.
	ListSnippets(ctx context.Context) ([]*model.SnippetRecord, error)

	// SearchSimilarSnippets performs vector search, ordered by
	// decreasing similarity to the query embedding
	SearchSimilarSnippets(ctx context.Context, embedding []float32, limit int) ([]*model.SnippetRecord, error)
}
