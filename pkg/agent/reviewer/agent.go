package reviewer

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/adapter"
	"github.com/redlinehq/redline/pkg/model"
	"github.com/redlinehq/redline/pkg/repository"
	"github.com/redlinehq/redline/pkg/tool"
	"github.com/redlinehq/redline/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/system.md
var systemPromptRaw string

// Agent reviews a contract and proposes clause edits informed by past
// review decisions. The whole decision history is injected into its
// system prompt, and the registered tools let it run similarity
// searches mid-reasoning for clauses it is unsure about.
type Agent struct {
	gemini adapter.Gemini
	repo   repository.Repository
	tools  *tool.Registry

	profile       *Profile
	maxIterations int
}

// Option is a functional option for Agent
type Option func(*Agent)

// WithProfile sets the review profile injected into the system prompt
func WithProfile(p *Profile) Option {
	return func(a *Agent) {
		a.profile = p
	}
}

// WithMaxIterations bounds the tool-call loop
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		a.maxIterations = n
	}
}

// New creates a reviewer agent
func New(gemini adapter.Gemini, repo repository.Repository, tools *tool.Registry, opts ...Option) *Agent {
	a := &Agent{
		gemini:        gemini,
		repo:          repo,
		tools:         tools,
		maxIterations: 16,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Review produces suggestions for the given document text. Store access
// failures propagate; an unusable model output degrades to an empty
// suggestion list.
func (a *Agent) Review(ctx context.Context, documentText string) ([]*model.Suggestion, error) {
	logger := logging.From(ctx)

	history, err := a.repo.ListSnippets(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to enumerate historical snippets")
	}

	systemPrompt, err := a.buildSystemPrompt(ctx, history)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(documentText, genai.RoleUser),
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
		Tools: a.tools.Specs(),
	}

	var finalText string
	for i := 0; i < a.maxIterations; i++ {
		resp, err := a.gemini.GenerateContent(ctx, contents, config)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to generate review")
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			logger.Warn("empty response from model, returning no suggestions")
			return nil, nil
		}

		candidate := resp.Candidates[0]
		contents = append(contents, candidate.Content)

		var functionResponses []*genai.Part
		for _, part := range candidate.Content.Parts {
			if part.FunctionCall == nil {
				continue
			}

			funcResp, err := a.tools.Execute(ctx, *part.FunctionCall)
			if err != nil {
				logger.Warn("tool call failed", "tool", part.FunctionCall.Name, "error", err)
				funcResp = &genai.FunctionResponse{
					Name:     part.FunctionCall.Name,
					Response: map[string]any{"error": err.Error()},
				}
			}
			functionResponses = append(functionResponses, &genai.Part{FunctionResponse: funcResp})
		}

		if len(functionResponses) > 0 {
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: functionResponses,
			})
			continue
		}

		var textParts []string
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				textParts = append(textParts, part.Text)
			}
		}
		finalText = strings.Join(textParts, "\n")
		break
	}

	suggestions, err := parseSuggestions(finalText)
	if err != nil {
		logger.Warn("unusable reviewer output, returning no suggestions", "error", err)
		return nil, nil
	}

	return reconcile(suggestions, history), nil
}

type systemPromptData struct {
	Profile     *Profile
	Snippets    []*model.SnippetRecord
	ToolPrompts string
}

func (a *Agent) buildSystemPrompt(ctx context.Context, history []*model.SnippetRecord) (string, error) {
	tmpl, err := template.New("system").Parse(systemPromptRaw)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse system prompt template")
	}

	var buf bytes.Buffer
	data := systemPromptData{
		Profile:     a.profile,
		Snippets:    history,
		ToolPrompts: a.tools.Prompts(ctx),
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt")
	}

	return buf.String(), nil
}
