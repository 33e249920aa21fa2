package review

import (
	"context"

	"github.com/redlinehq/redline/pkg/adapter"
	"github.com/redlinehq/redline/pkg/model"
	"github.com/redlinehq/redline/pkg/repository"
	"github.com/redlinehq/redline/pkg/tool/snippet"
)

// Reviewer produces suggestions from document text
type Reviewer interface {
	Review(ctx context.Context, documentText string) ([]*model.Suggestion, error)
}

// UseCase drives the suggestion lifecycle: document intake, agent
// invocation, and the per-suggestion user decisions that feed the
// durable snippet store.
type UseCase struct {
	repo     repository.Repository
	gemini   adapter.Gemini
	storage  adapter.Storage
	intake   adapter.Intake
	reviewer Reviewer
	sessions *SessionStore
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithStorage sets the object storage adapter
func WithStorage(s adapter.Storage) Option {
	return func(uc *UseCase) {
		uc.storage = s
	}
}

// WithIntake sets the document intake adapter
func WithIntake(i adapter.Intake) Option {
	return func(uc *UseCase) {
		uc.intake = i
	}
}

// WithReviewer sets the suggestion agent
func WithReviewer(r Reviewer) Option {
	return func(uc *UseCase) {
		uc.reviewer = r
	}
}

// New creates a review UseCase
func New(repo repository.Repository, gemini adapter.Gemini, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:     repo,
		gemini:   gemini,
		sessions: NewSessionStore(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Sessions returns the session store
func (uc *UseCase) Sessions() *SessionStore {
	return uc.sessions
}

// ListSnippets enumerates every durable snippet record
func (uc *UseCase) ListSnippets(ctx context.Context) ([]*model.SnippetRecord, error) {
	return uc.repo.ListSnippets(ctx)
}

// SearchSimilar embeds the query text and runs a similarity search over
// the snippet store
func (uc *UseCase) SearchSimilar(ctx context.Context, query string, limit int) ([]*model.SnippetRecord, error) {
	embedding, err := uc.gemini.Embedding(ctx, query, snippet.EmbeddingDimension)
	if err != nil {
		return nil, err
	}
	return uc.repo.SearchSimilarSnippets(ctx, embedding, limit)
}

// insertSnippet embeds the original text and appends a record to the
// durable store
func (uc *UseCase) insertSnippet(ctx context.Context, original, modified string, ignored bool) error {
	embedding, err := uc.gemini.Embedding(ctx, original, snippet.EmbeddingDimension)
	if err != nil {
		return err
	}

	return uc.repo.InsertSnippet(ctx, &model.SnippetRecord{
		ID:        model.NewSnippetID(),
		Original:  original,
		Modified:  modified,
		Ignored:   ignored,
		Embedding: embedding,
	})
}
