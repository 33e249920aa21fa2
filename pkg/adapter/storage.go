package adapter

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultSignedURLTTL bounds how long the intake service can fetch an
// uploaded document
const DefaultSignedURLTTL = time.Hour

// Storage is the interface for uploaded document storage
type Storage interface {
	// Upload stores the content of r as an object
	Upload(ctx context.Context, objectName string, r io.Reader, contentType string) error
	// SignedURL issues a time-bounded retrieval URL for an object
	SignedURL(objectName string, ttl time.Duration) (string, error)
}

// storageClient implements Storage using Cloud Storage
type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage client
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Upload(ctx context.Context, objectName string, r io.Reader, contentType string) error {
	obj := s.client.Bucket(s.bucketName).Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("object", objectName))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("object", objectName))
	}

	return nil
}

func (s *storageClient) SignedURL(objectName string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucketName).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign URL", goerr.V("object", objectName))
	}

	return url, nil
}
