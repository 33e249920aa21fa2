package review

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/model"
)

// Accept records the user's final text for a suggestion as a durable
// snippet record and hides the suggestion. Future reviews of a similar
// clause will propose finalText verbatim.
func (uc *UseCase) Accept(ctx context.Context, session *model.Session, id int, finalText string) error {
	if finalText == "" {
		return goerr.New("final text is empty")
	}

	suggestion, err := session.Suggestion(id)
	if err != nil {
		return err
	}

	if err := uc.insertSnippet(ctx, suggestion.Original, finalText, false); err != nil {
		return goerr.Wrap(err, "failed to record accepted change")
	}

	suggestion.Hidden = true
	return nil
}

// IgnoreOnce hides a suggestion for the rest of the session. Nothing is
// written to the store.
func (uc *UseCase) IgnoreOnce(session *model.Session, id int) error {
	suggestion, err := session.Suggestion(id)
	if err != nil {
		return err
	}

	suggestion.Hidden = true
	return nil
}

// IgnoreForever records the clause as ignored so no future review
// proposes it again, then hides the suggestion.
func (uc *UseCase) IgnoreForever(ctx context.Context, session *model.Session, id int) error {
	suggestion, err := session.Suggestion(id)
	if err != nil {
		return err
	}

	if err := uc.insertSnippet(ctx, suggestion.Original, "", true); err != nil {
		return goerr.Wrap(err, "failed to record ignored clause")
	}

	suggestion.Hidden = true
	return nil
}

// SubmitManualChange records an out-of-band clause decision that did
// not come from a suggestion batch
func (uc *UseCase) SubmitManualChange(ctx context.Context, original, modified string) error {
	if original == "" {
		return goerr.New("original clause is empty")
	}
	if modified == "" {
		return goerr.New("modified clause is empty")
	}

	if err := uc.insertSnippet(ctx, original, modified, false); err != nil {
		return goerr.Wrap(err, "failed to record manual change")
	}

	return nil
}
