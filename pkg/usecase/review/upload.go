package review

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/adapter"
	"github.com/redlinehq/redline/pkg/model"
	"github.com/redlinehq/redline/pkg/utils/logging"
)

// ProcessUpload runs the full review flow for one uploaded document:
// store the file, hand a signed URL to the intake service, wait for the
// extracted text, and invoke the reviewer agent. The resulting batch is
// attached to the session with 0-based positional ids.
//
// Intake failures and empty documents are informational: the session
// records the failure and an empty batch is returned with a nil error.
// Storage and snippet-store failures propagate to the caller.
func (uc *UseCase) ProcessUpload(ctx context.Context, session *model.Session, filename string, r io.Reader) ([]*model.Suggestion, error) {
	logger := logging.From(ctx)

	objectName := uuid.New().String() + "/" + path.Base(filename)
	if err := uc.storage.Upload(ctx, objectName, r, "application/pdf"); err != nil {
		return nil, goerr.Wrap(err, "failed to store uploaded document")
	}

	signedURL, err := uc.storage.SignedURL(objectName, adapter.DefaultSignedURLTTL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign document URL")
	}

	text, intakeErr := uc.extractText(ctx, signedURL)
	if intakeErr != nil {
		logger.Warn("document intake failed", "object", objectName, "error", intakeErr)
		session.IntakeErr = intakeErr.Error()
		session.SetSuggestions(nil)
		return nil, nil
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("document intake produced no text", "object", objectName)
		session.IntakeErr = "document text is empty"
		session.SetSuggestions(nil)
		return nil, nil
	}

	suggestions, err := uc.reviewer.Review(ctx, text)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to review document")
	}

	session.IntakeErr = ""
	session.SetSuggestions(suggestions)
	logger.Info("review completed", "session", session.ID, "suggestions", len(suggestions))

	return suggestions, nil
}

func (uc *UseCase) extractText(ctx context.Context, url string) (string, error) {
	jobID, err := uc.intake.Submit(ctx, url)
	if err != nil {
		return "", err
	}

	return uc.intake.ExtractText(ctx, jobID)
}
