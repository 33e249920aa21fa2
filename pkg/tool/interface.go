package tool

import (
	"context"

	"google.golang.org/genai"
)

// Tool represents a capability the reviewer agent can call mid-reasoning
type Tool interface {
	// Spec returns the tool specification for Gemini function calling
	Spec() *genai.Tool

	// Execute runs the tool with the given function call and returns the response
	Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error)

	// Prompt returns additional instructions to be appended to the
	// system prompt, or empty string if none are needed
	Prompt(ctx context.Context) string
}
