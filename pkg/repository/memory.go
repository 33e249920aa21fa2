package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/redlinehq/redline/pkg/model"
)

// Memory is an in-process Repository used by unit tests and the
// server's dry-run mode. Search ranks by cosine similarity.
type Memory struct {
	mu       sync.Mutex
	snippets []*model.SnippetRecord
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) InsertSnippet(ctx context.Context, snippet *model.SnippetRecord) error {
	if err := snippet.Validate(); err != nil {
		return err
	}
	if snippet.ID == "" {
		snippet.ID = model.NewSnippetID()
	}
	if snippet.CreatedAt.IsZero() {
		snippet.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *snippet
	m.snippets = append(m.snippets, &copied)
	return nil
}

func (m *Memory) ListSnippets(ctx context.Context) ([]*model.SnippetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snippets := make([]*model.SnippetRecord, len(m.snippets))
	copy(snippets, m.snippets)
	return snippets, nil
}

func (m *Memory) SearchSimilarSnippets(ctx context.Context, embedding []float32, limit int) ([]*model.SnippetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type scored struct {
		snippet *model.SnippetRecord
		score   float64
	}

	results := make([]scored, 0, len(m.snippets))
	for _, s := range m.snippets {
		results = append(results, scored{
			snippet: s,
			score:   cosineSimilarity(embedding, s.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	snippets := make([]*model.SnippetRecord, len(results))
	for i, r := range results {
		snippets[i] = r.snippet
	}
	return snippets, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
