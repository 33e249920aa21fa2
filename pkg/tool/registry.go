package tool

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

var ErrToolNotFound = goerr.New("tool not found")

// Registry routes Gemini function calls to the registered tools
type Registry struct {
	byName   map[string]Tool
	allTools []Tool
	specs    []*genai.Tool
}

// New creates a registry with the given tools
func New(tools ...Tool) *Registry {
	r := &Registry{
		byName:   make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		spec := t.Spec()
		if spec == nil || len(spec.FunctionDeclarations) == 0 {
			continue
		}
		r.specs = append(r.specs, spec)
		for _, fd := range spec.FunctionDeclarations {
			r.byName[fd.Name] = t
		}
	}

	return r
}

// Specs returns all tool specifications for Gemini function calling
func (r *Registry) Specs() []*genai.Tool {
	return r.specs
}

// Prompts returns all tool prompt fragments joined together
func (r *Registry) Prompts(ctx context.Context) string {
	var prompts []string
	for _, t := range r.allTools {
		if p := t.Prompt(ctx); p != "" {
			prompts = append(prompts, p)
		}
	}
	return strings.Join(prompts, "\n\n")
}

// Execute runs the tool matching the function call
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	t, ok := r.byName[fc.Name]
	if !ok {
		return nil, goerr.Wrap(ErrToolNotFound, "no such tool", goerr.V("name", fc.Name))
	}

	return t.Execute(ctx, fc)
}
