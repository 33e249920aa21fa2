package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/model"
	"google.golang.org/api/iterator"
)

const defaultCollection = "snippets"

// Firestore implements Repository using Cloud Firestore with a vector
// index on the embedding field
type Firestore struct {
	client     *firestore.Client
	collection string
}

type FirestoreOption func(*Firestore)

// WithCollection overrides the snippet collection name
func WithCollection(name string) FirestoreOption {
	return func(f *Firestore) {
		f.collection = name
	}
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string, opts ...FirestoreOption) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	f := &Firestore{
		client:     client,
		collection: defaultCollection,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// snippetDoc is the Firestore document shape for a snippet record
type snippetDoc struct {
	Original  string             `firestore:"original"`
	Modified  string             `firestore:"modified"`
	Ignored   bool               `firestore:"ignored"`
	Embedding firestore.Vector32 `firestore:"embedding"`
	CreatedAt time.Time          `firestore:"created_at"`
}

func (d *snippetDoc) toModel(id string) *model.SnippetRecord {
	return &model.SnippetRecord{
		ID:        model.SnippetID(id),
		Original:  d.Original,
		Modified:  d.Modified,
		Ignored:   d.Ignored,
		Embedding: d.Embedding,
		CreatedAt: d.CreatedAt,
	}
}

func (f *Firestore) InsertSnippet(ctx context.Context, snippet *model.SnippetRecord) error {
	if err := snippet.Validate(); err != nil {
		return err
	}
	if snippet.ID == "" {
		snippet.ID = model.NewSnippetID()
	}
	if snippet.CreatedAt.IsZero() {
		snippet.CreatedAt = time.Now()
	}

	doc := snippetDoc{
		Original:  snippet.Original,
		Modified:  snippet.Modified,
		Ignored:   snippet.Ignored,
		Embedding: snippet.Embedding,
		CreatedAt: snippet.CreatedAt,
	}

	_, err := f.client.Collection(f.collection).Doc(string(snippet.ID)).Set(ctx, doc)
	if err != nil {
		return goerr.Wrap(err, "failed to insert snippet", goerr.V("id", snippet.ID))
	}

	return nil
}

func (f *Firestore) ListSnippets(ctx context.Context) ([]*model.SnippetRecord, error) {
	iter := f.client.Collection(f.collection).Documents(ctx)
	defer iter.Stop()

	var snippets []*model.SnippetRecord
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate snippets")
		}

		var doc snippetDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode snippet", goerr.V("id", docSnap.Ref.ID))
		}
		snippets = append(snippets, doc.toModel(docSnap.Ref.ID))
	}

	return snippets, nil
}

func (f *Firestore) SearchSimilarSnippets(ctx context.Context, embedding []float32, limit int) ([]*model.SnippetRecord, error) {
	query := f.client.Collection(f.collection).FindNearest(
		"embedding",
		firestore.Vector32(embedding),
		limit,
		firestore.DistanceMeasureCosine,
		nil,
	)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var snippets []*model.SnippetRecord
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search snippets")
		}

		var doc snippetDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode snippet", goerr.V("id", docSnap.Ref.ID))
		}
		snippets = append(snippets, doc.toModel(docSnap.Ref.ID))
	}

	return snippets, nil
}

// Close releases the underlying Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}
