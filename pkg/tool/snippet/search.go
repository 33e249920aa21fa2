package snippet

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/adapter"
	"github.com/redlinehq/redline/pkg/model"
	"github.com/redlinehq/redline/pkg/repository"
	"github.com/redlinehq/redline/pkg/utils/logging"
	"google.golang.org/genai"
)

const (
	// DefaultSearchLimit matches the historical-change lookup depth
	// the review flow was tuned against
	DefaultSearchLimit = 4

	// EmbeddingDimension is shared with snippet insertion so stored and
	// query vectors stay comparable
	EmbeddingDimension = 768
)

// Search is the search_similar_changes tool. It lets the reviewer agent
// check whether a clause it is unsure about was already decided on in a
// past review, instead of asking the user again.
type Search struct {
	repo   repository.Repository
	gemini adapter.Gemini
	limit  int
}

// NewSearch creates a new search_similar_changes tool
func NewSearch(repo repository.Repository, gemini adapter.Gemini) *Search {
	return &Search{
		repo:   repo,
		gemini: gemini,
		limit:  DefaultSearchLimit,
	}
}

func (s *Search) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "search_similar_changes",
				Description: "Search past review decisions for clauses similar to a contract snippet. Returns the matched original clauses, the modified versions that replaced them (if any), and whether the matched clause should be ignored.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"original_snippet": {
							Type:        genai.TypeString,
							Description: "The contract snippet you are unsure about, quoted as it appears in the document",
						},
					},
					Required: []string{"original_snippet"},
				},
			},
		},
	}
}

func (s *Search) Prompt(ctx context.Context) string {
	return "When you are unsure how a clause should be handled, call search_similar_changes with the clause text before asking the user. If a similar clause has a recorded modification, propose exactly that stored modification. If a similar clause is recorded as ignored, omit it from your output."
}

func (s *Search) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	query, ok := fc.Args["original_snippet"].(string)
	if !ok || query == "" {
		return &genai.FunctionResponse{
			Name:     fc.Name,
			Response: map[string]any{"error": "original_snippet parameter is required"},
		}, nil
	}

	logging.From(ctx).Debug("searching similar historical changes", "query", query)

	embedding, err := s.gemini.Embedding(ctx, query, EmbeddingDimension)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed tool query")
	}

	matches, err := s.repo.SearchSimilarSnippets(ctx, embedding, s.limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search similar snippets")
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": formatMatches(matches)},
	}, nil
}

func formatMatches(matches []*model.SnippetRecord) string {
	if len(matches) == 0 {
		return "No similar historical changes found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d similar historical change(s):\n\n", len(matches))
	for i, m := range matches {
		fmt.Fprintf(&sb, "%d. Original: %s\n", i+1, m.Original)
		if m.Modified != "" {
			fmt.Fprintf(&sb, "   Modified: %s\n", m.Modified)
		}
		fmt.Fprintf(&sb, "   Ignored: %v\n\n", m.Ignored)
	}
	return sb.String()
}
