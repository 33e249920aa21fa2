package review_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/redlinehq/redline/pkg/adapter"
	"github.com/redlinehq/redline/pkg/model"
	"github.com/redlinehq/redline/pkg/repository"
	"github.com/redlinehq/redline/pkg/usecase/review"
	"google.golang.org/genai"
)

// mockGemini is a mock implementation of adapter.Gemini for testing
type mockGemini struct {
	embeddingFunc func(ctx context.Context, text string, dimension int32) ([]float32, error)
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGemini) Embedding(ctx context.Context, text string, dimension int32) ([]float32, error) {
	if m.embeddingFunc != nil {
		return m.embeddingFunc(ctx, text, dimension)
	}
	return []float32{1, 0, 0}, nil
}

// stubStorage is an in-memory adapter.Storage
type stubStorage struct {
	objects map[string][]byte
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: make(map[string][]byte)}
}

func (s *stubStorage) Upload(ctx context.Context, objectName string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[objectName] = data
	return nil
}

func (s *stubStorage) SignedURL(objectName string, ttl time.Duration) (string, error) {
	return "https://signed.example.com/" + objectName, nil
}

// stubIntake is a scriptable adapter.Intake
type stubIntake struct {
	submitErr  error
	extractErr error
	text       string
}

func (s *stubIntake) Submit(ctx context.Context, url string) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return "job-1", nil
}

func (s *stubIntake) ExtractText(ctx context.Context, jobID string) (string, error) {
	if s.extractErr != nil {
		return "", s.extractErr
	}
	return s.text, nil
}

// stubReviewer returns a fixed suggestion batch
type stubReviewer struct {
	suggestions []*model.Suggestion
	err         error
	gotText     string
}

func (s *stubReviewer) Review(ctx context.Context, documentText string) ([]*model.Suggestion, error) {
	s.gotText = documentText
	return s.suggestions, s.err
}

func newUseCase(repo repository.Repository, intake adapter.Intake, rev review.Reviewer) *review.UseCase {
	return review.New(repo, &mockGemini{},
		review.WithStorage(newStubStorage()),
		review.WithIntake(intake),
		review.WithReviewer(rev),
	)
}

func TestProcessUploadAssignsPositionalIDs(t *testing.T) {
	repo := repository.NewMemory()
	rev := &stubReviewer{
		suggestions: []*model.Suggestion{
			{Original: "clause a", Modified: "rewrite a"},
			{Original: "clause b", Question: "what about b?"},
			{Original: "clause c", Modified: "rewrite c"},
		},
	}
	uc := newUseCase(repo, &stubIntake{text: "contract text"}, rev)

	session := uc.Sessions().Create()
	suggestions, err := uc.ProcessUpload(context.Background(), session, "contract.pdf", strings.NewReader("%PDF"))
	gt.NoError(t, err)

	gt.A(t, suggestions).Length(3)
	for i, sg := range suggestions {
		gt.Equal(t, sg.ID, i)
		gt.False(t, sg.Hidden)
	}
	gt.Equal(t, rev.gotText, "contract text")
	gt.A(t, session.Visible()).Length(3)
	gt.Equal(t, session.IntakeErr, "")
}

func TestProcessUploadIntakeRejectedDegrades(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{submitErr: adapter.ErrIntakeRejected}, &stubReviewer{})

	session := uc.Sessions().Create()
	suggestions, err := uc.ProcessUpload(context.Background(), session, "contract.pdf", strings.NewReader("%PDF"))
	gt.NoError(t, err)
	gt.A(t, suggestions).Length(0)
	gt.S(t, session.IntakeErr).Contains("rejected")
}

func TestProcessUploadIntakeExhaustedDegrades(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{extractErr: adapter.ErrIntakeExhausted}, &stubReviewer{})

	session := uc.Sessions().Create()
	suggestions, err := uc.ProcessUpload(context.Background(), session, "contract.pdf", strings.NewReader("%PDF"))
	gt.NoError(t, err)
	gt.A(t, suggestions).Length(0)
	gt.S(t, session.IntakeErr).Contains("exhausted")
}

func TestProcessUploadEmptyTextDegrades(t *testing.T) {
	repo := repository.NewMemory()
	rev := &stubReviewer{}
	uc := newUseCase(repo, &stubIntake{text: "  \n "}, rev)

	session := uc.Sessions().Create()
	suggestions, err := uc.ProcessUpload(context.Background(), session, "contract.pdf", strings.NewReader("%PDF"))
	gt.NoError(t, err)
	gt.A(t, suggestions).Length(0)
	gt.Equal(t, session.IntakeErr, "document text is empty")
	gt.Equal(t, rev.gotText, "")
}

func TestProcessUploadReviewerFailurePropagates(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{text: "contract text"}, &stubReviewer{err: errors.New("store unavailable")})

	session := uc.Sessions().Create()
	_, err := uc.ProcessUpload(context.Background(), session, "contract.pdf", strings.NewReader("%PDF"))
	gt.Error(t, err)
}

func sessionWithBatch(uc *review.UseCase, suggestions ...*model.Suggestion) *model.Session {
	session := uc.Sessions().Create()
	session.SetSuggestions(suggestions)
	return session
}

func TestAcceptWritesRecordAndHides(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{}, &stubReviewer{})
	ctx := context.Background()

	session := sessionWithBatch(uc,
		&model.Suggestion{Original: "Payment due in 60 days", Modified: "Payment due in 30 days"})

	gt.NoError(t, uc.Accept(ctx, session, 0, "Payment due in 30 days"))

	snippets, err := repo.ListSnippets(ctx)
	gt.NoError(t, err)
	gt.A(t, snippets).Length(1)
	gt.Equal(t, snippets[0].Original, "Payment due in 60 days")
	gt.Equal(t, snippets[0].Modified, "Payment due in 30 days")
	gt.False(t, snippets[0].Ignored)

	gt.True(t, session.Suggestions[0].Hidden)
	gt.A(t, session.Visible()).Length(0)
}

func TestAcceptRecordsEditedText(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{}, &stubReviewer{})
	ctx := context.Background()

	session := sessionWithBatch(uc,
		&model.Suggestion{Original: "clause", Modified: "agent rewrite"})

	// the user edited the agent's proposal before accepting
	gt.NoError(t, uc.Accept(ctx, session, 0, "user edited rewrite"))

	snippets, err := repo.ListSnippets(ctx)
	gt.NoError(t, err)
	gt.Equal(t, snippets[0].Modified, "user edited rewrite")
}

func TestIgnoreOnceNoDurableWrite(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{}, &stubReviewer{})

	session := sessionWithBatch(uc,
		&model.Suggestion{Original: "clause", Modified: "rewrite"})

	gt.NoError(t, uc.IgnoreOnce(session, 0))

	snippets, err := repo.ListSnippets(context.Background())
	gt.NoError(t, err)
	gt.A(t, snippets).Length(0)
	gt.True(t, session.Suggestions[0].Hidden)
}

func TestIgnoreForeverWritesIgnoredRecord(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{}, &stubReviewer{})
	ctx := context.Background()

	session := sessionWithBatch(uc,
		&model.Suggestion{Original: "Exclusive rights in perpetuity", Modified: "Rights limited to 12 months"})

	gt.NoError(t, uc.IgnoreForever(ctx, session, 0))

	snippets, err := repo.ListSnippets(ctx)
	gt.NoError(t, err)
	gt.A(t, snippets).Length(1)
	gt.Equal(t, snippets[0].Original, "Exclusive rights in perpetuity")
	gt.Equal(t, snippets[0].Modified, "")
	gt.True(t, snippets[0].Ignored)
	gt.True(t, session.Suggestions[0].Hidden)
}

func TestDecisionUnknownID(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{}, &stubReviewer{})
	ctx := context.Background()

	session := sessionWithBatch(uc,
		&model.Suggestion{Original: "clause", Modified: "rewrite"})

	err := uc.Accept(ctx, session, 5, "text")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrSuggestionNotFound))

	err = uc.IgnoreOnce(session, -1)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrSuggestionNotFound))
}

func TestAcceptEmbeddingFailureKeepsVisible(t *testing.T) {
	repo := repository.NewMemory()
	gemini := &mockGemini{
		embeddingFunc: func(ctx context.Context, text string, dimension int32) ([]float32, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	uc := review.New(repo, gemini,
		review.WithStorage(newStubStorage()),
		review.WithIntake(&stubIntake{}),
		review.WithReviewer(&stubReviewer{}),
	)
	ctx := context.Background()

	session := sessionWithBatch(uc,
		&model.Suggestion{Original: "clause", Modified: "rewrite"})

	gt.Error(t, uc.Accept(ctx, session, 0, "rewrite"))
	gt.False(t, session.Suggestions[0].Hidden)

	snippets, err := repo.ListSnippets(ctx)
	gt.NoError(t, err)
	gt.A(t, snippets).Length(0)
}

func TestSubmitManualChange(t *testing.T) {
	repo := repository.NewMemory()
	uc := newUseCase(repo, &stubIntake{}, &stubReviewer{})
	ctx := context.Background()

	gt.NoError(t, uc.SubmitManualChange(ctx, "original clause", "better clause"))

	snippets, err := repo.ListSnippets(ctx)
	gt.NoError(t, err)
	gt.A(t, snippets).Length(1)
	gt.Equal(t, snippets[0].Original, "original clause")
	gt.Equal(t, snippets[0].Modified, "better clause")
	gt.False(t, snippets[0].Ignored)

	gt.Error(t, uc.SubmitManualChange(ctx, "", "modified"))
	gt.Error(t, uc.SubmitManualChange(ctx, "original", ""))
}

func TestSessionStore(t *testing.T) {
	uc := newUseCase(repository.NewMemory(), &stubIntake{}, &stubReviewer{})

	session := uc.Sessions().Create()
	got, err := uc.Sessions().Get(session.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.ID, session.ID)

	_, err = uc.Sessions().Get(model.SessionID("no-such-session"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, review.ErrSessionNotFound))
}
