package model

import "github.com/m-mizutani/goerr/v2"

// Suggestion is one candidate clause edit surfaced to the user. It lives
// only for the session that produced it; a terminal decision (accept,
// ignore once, ignore forever) hides it and, except for ignore-once,
// projects a SnippetRecord into the durable store.
//
// Exactly one of Modified and Question is set. When the reviewer emits
// both, normalization keeps the modification and drops the question.
type Suggestion struct {
	// ID is the 0-based position of the suggestion in its batch
	ID       int    `json:"id"`
	Original string `json:"original_snippet"`
	Modified string `json:"modified_snippet,omitempty"`
	Question string `json:"question_from_agent,omitempty"`
	Hidden   bool   `json:"hidden"`
}

// Validate checks the normalized shape of a suggestion
func (s *Suggestion) Validate() error {
	if s.Original == "" {
		return goerr.New("suggestion original snippet is empty")
	}
	if s.Modified != "" && s.Question != "" {
		return goerr.New("suggestion carries both modification and question",
			goerr.V("original", s.Original))
	}
	if s.Modified == "" && s.Question == "" {
		return goerr.New("suggestion carries neither modification nor question",
			goerr.V("original", s.Original))
	}
	return nil
}
