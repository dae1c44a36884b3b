package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/teamsteps/teamsteps/internal/models"
)

var (
	// ErrNoDocument indicates the backing document has never been written.
	ErrNoDocument = errors.New("user document not found")
)

// Repository persists the whole user collection as a single document.
// Implementations replace the stored document on every Save.
type Repository interface {
	Load(ctx context.Context) ([]models.UserWithToken, error)
	Save(ctx context.Context, users []models.UserWithToken) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

// encodeUsers renders the collection in the on-disk JSON layout shared by the
// file, redis and object backends.
func encodeUsers(users []models.UserWithToken) ([]byte, error) {
	if users == nil {
		users = []models.UserWithToken{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding users: %w", err)
	}
	return data, nil
}

// decodeUsers parses a stored document. A stored totalSteps is accepted but
// the store recomputes it, so it is not trusted here.
func decodeUsers(data []byte) ([]models.UserWithToken, error) {
	var users []models.UserWithToken
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parsing users: %w", err)
	}
	if users == nil {
		users = []models.UserWithToken{}
	}
	return users, nil
}

func cloneAll(users []models.UserWithToken) []models.UserWithToken {
	out := make([]models.UserWithToken, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}
