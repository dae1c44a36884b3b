// Package identity resolves request tokens to the caller's identity.
package identity

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/teamsteps/teamsteps/internal/models"
)

var (
	// ErrUnauthenticated indicates no token was supplied.
	ErrUnauthenticated = errors.New("login token required (?token=abc)")

	// ErrForbidden indicates the caller is known but lacks admin rights.
	ErrForbidden = errors.New("must be admin")
)

// Kind tags what a token resolved to.
type Kind int

const (
	// KindUser is a regular user record from the store.
	KindUser Kind = iota
	// KindAdmin is the configured admin secret. It has no record.
	KindAdmin
)

// Identity is either the admin (User == nil) or a stored user.
type Identity struct {
	Kind Kind
	User *models.User
}

// IsAdmin reports whether the caller may use admin routes.
func (i Identity) IsAdmin() bool {
	return i.Kind == KindAdmin || (i.User != nil && i.User.IsAdmin)
}

// Name is the user's name, or "Admin" for the admin identity.
func (i Identity) Name() string {
	if i.Kind == KindAdmin || i.User == nil {
		return "Admin"
	}
	return i.User.Name
}

// View renders the identity in the user shape returned to clients.
func (i Identity) View() models.User {
	if i.Kind == KindAdmin || i.User == nil {
		return models.User{Name: "Admin", Team: "N/A", IsAdmin: true, Steps: []models.StepSubmission{}}
	}
	return i.User.Clone()
}

// UserLookup is the store capability the resolver needs.
type UserLookup interface {
	GetByToken(ctx context.Context, token string) (models.User, error)
}

// Resolver maps tokens to identities. The admin secret is checked first.
type Resolver struct {
	adminToken string
	users      UserLookup
}

func NewResolver(adminToken string, users UserLookup) *Resolver {
	return &Resolver{adminToken: adminToken, users: users}
}

// IsAdminToken compares in constant time.
func (r *Resolver) IsAdminToken(token string) bool {
	if r.adminToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(r.adminToken)) == 1
}

// Resolve returns ErrUnauthenticated for an empty token and the store's
// not-found error for an unknown one.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}
	if r.IsAdminToken(token) {
		return Identity{Kind: KindAdmin}, nil
	}
	u, err := r.users.GetByToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Kind: KindUser, User: &u}, nil
}
