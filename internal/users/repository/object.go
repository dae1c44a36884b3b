package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/teamsteps/teamsteps/internal/models"
)

// DefaultObjectKey is the object name used when none is configured.
const DefaultObjectKey = "users.json"

// ObjectStore is the subset of an object storage client the object backend
// needs. *storage.MinIOStorage satisfies it.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// ObjectRepo stores the JSON document as a single object in a bucket.
type ObjectRepo struct {
	store ObjectStore
	key   string
}

func NewObjectRepo(store ObjectStore, key string) *ObjectRepo {
	if key == "" {
		key = DefaultObjectKey
	}
	return &ObjectRepo{store: store, key: key}
}

func (r *ObjectRepo) Name() string { return "minio" }

func (r *ObjectRepo) Load(ctx context.Context) ([]models.UserWithToken, error) {
	exists, err := r.store.ObjectExists(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("stat object %s: %w", r.key, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: object %s", ErrNoDocument, r.key)
	}
	rc, err := r.store.DownloadFile(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("download object %s: %w", r.key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", r.key, err)
	}
	return decodeUsers(data)
}

func (r *ObjectRepo) Save(ctx context.Context, users []models.UserWithToken) error {
	data, err := encodeUsers(users)
	if err != nil {
		return err
	}
	if err := r.store.UploadFile(ctx, r.key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return fmt.Errorf("upload object %s: %w", r.key, err)
	}
	return nil
}
