package reviewer

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/model"
)

var ErrMalformedOutput = goerr.New("malformed reviewer output")

// rawSuggestion is the only accepted shape of one reviewer output
// element. Unknown or alternative field names are not probed.
type rawSuggestion struct {
	OriginalSnippet   string `json:"original_snippet"`
	ModifiedSnippet   string `json:"modified_snippet"`
	QuestionFromAgent string `json:"question_from_agent"`
}

// parseSuggestions decodes and normalizes the reviewer's final text
// into suggestions. It is the single validation step between the model
// and the rest of the system: anything that does not decode into the
// expected array shape, or any element without an original snippet, is
// an error.
func parseSuggestions(text string) ([]*model.Suggestion, error) {
	payload := stripCodeFence(text)
	if payload == "" {
		return nil, goerr.Wrap(ErrMalformedOutput, "empty output")
	}

	var raws []rawSuggestion
	if err := json.Unmarshal([]byte(payload), &raws); err != nil {
		return nil, goerr.Wrap(ErrMalformedOutput, "output is not a suggestion array",
			goerr.V("cause", err.Error()))
	}

	suggestions := make([]*model.Suggestion, 0, len(raws))
	for i, raw := range raws {
		if raw.OriginalSnippet == "" {
			return nil, goerr.Wrap(ErrMalformedOutput, "element without original snippet",
				goerr.V("index", i))
		}

		sg := &model.Suggestion{
			Original: raw.OriginalSnippet,
			Modified: raw.ModifiedSnippet,
			Question: raw.QuestionFromAgent,
		}
		// Modification and question are mutually exclusive; when the
		// model emits both, the modification wins
		if sg.Modified != "" {
			sg.Question = ""
		}
		if err := sg.Validate(); err != nil {
			return nil, goerr.Wrap(ErrMalformedOutput, "invalid suggestion element",
				goerr.V("index", i), goerr.V("cause", err.Error()))
		}

		suggestions = append(suggestions, sg)
	}

	return suggestions, nil
}

// stripCodeFence removes a surrounding markdown code fence, which the
// model sometimes wraps its JSON in despite instructions
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// reconcile applies deterministic history checks the prompt cannot
// guarantee: a clause whose text exactly matches an ignored record is
// never surfaced, and an exact match with a recorded modification is
// always proposed verbatim. Near-duplicate matching stays with the
// model's own judgment.
func reconcile(suggestions []*model.Suggestion, history []*model.SnippetRecord) []*model.Suggestion {
	byOriginal := make(map[string]*model.SnippetRecord, len(history))
	for _, rec := range history {
		// later records supersede earlier ones for the same text
		byOriginal[rec.Original] = rec
	}

	out := make([]*model.Suggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		rec, ok := byOriginal[sg.Original]
		if !ok {
			out = append(out, sg)
			continue
		}
		if rec.Ignored {
			continue
		}
		if rec.Modified != "" {
			sg.Modified = rec.Modified
			sg.Question = ""
		}
		out = append(out, sg)
	}

	return out
}
