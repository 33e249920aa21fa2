package model

import (
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type SnippetID string

// NewSnippetID generates a new unique SnippetID
func NewSnippetID() SnippetID {
	return SnippetID(uuid.New().String())
}

// SnippetRecord is the durable record of one decision about a contract
// clause: the clause text as it appeared, the replacement text the user
// settled on (empty when the clause was ignored), and whether similar
// clauses should be suppressed in future reviews.
//
// Records are append-only. Superseding a decision means inserting a new
// record; similarity ranking at query time resolves conflicts.
type SnippetRecord struct {
	ID       SnippetID
	Original string
	Modified string
	Ignored  bool

	// Embedding of Original, used for similarity search
	Embedding firestore.Vector32

	CreatedAt time.Time
}

// Validate checks if the record is consistent before insertion
func (s *SnippetRecord) Validate() error {
	if s.Original == "" {
		return goerr.New("snippet original is empty")
	}
	if s.Ignored && s.Modified != "" {
		return goerr.New("ignored snippet must not carry a modification",
			goerr.V("original", s.Original))
	}
	return nil
}
