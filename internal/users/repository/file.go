package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/teamsteps/teamsteps/internal/models"
)

// FileName is the document name inside the data directory.
const FileName = "users.json"

// FileRepo stores the collection as an indented JSON file.
type FileRepo struct {
	path string
}

// NewFileRepo returns a repo backed by <dataDir>/users.json.
func NewFileRepo(dataDir string) *FileRepo {
	return &FileRepo{path: filepath.Join(dataDir, FileName)}
}

func (r *FileRepo) Name() string { return "file" }

// Path returns the location of the backing file.
func (r *FileRepo) Path() string { return r.path }

func (r *FileRepo) Load(ctx context.Context) ([]models.UserWithToken, error) {
	data, err := os.ReadFile(r.path) //nolint:gosec // path comes from DATA_DIR
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoDocument, r.path)
		}
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}
	return decodeUsers(data)
}

// Save writes to a temp file in the same directory and renames it over the
// previous document.
func (r *FileRepo) Save(ctx context.Context, users []models.UserWithToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	data, err := encodeUsers(users)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", r.path, err)
	}
	return nil
}
