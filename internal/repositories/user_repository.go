package repositories

import (
	"context"

	"github.com/darkchannel/backend/internal/models"
)

// ProfileUpdate carries the self-service profile fields a user may patch.
// Nil pointers leave the stored value untouched; empty strings clear it.
type ProfileUpdate struct {
	Name              *string
	Phone             *string
	FoundUs           *string
	PreferredLanguage *string
}

// IsEmpty reports whether the update contains no fields.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Phone == nil && u.FoundUs == nil && u.PreferredLanguage == nil
}

// AdminUserUpdate carries the mutations available to administrators.
// Credits takes precedence over CreditsDelta; both clamp the stored balance
// to zero or above.
type AdminUserUpdate struct {
	Credits      *int
	CreditsDelta *int
	Role         *string
}

// IsEmpty reports whether the update contains no mutations.
func (u AdminUserUpdate) IsEmpty() bool {
	return u.Credits == nil && u.CreditsDelta == nil && u.Role == nil
}

// UserRepository exposes data access for platform accounts.
type UserRepository interface {
	// Ensure returns the user for the given email, creating a fresh record
	// when none exists yet.
	Ensure(ctx context.Context, email string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// UpsertProfile applies a profile patch, creating the account if absent.
	UpsertProfile(ctx context.Context, email string, update ProfileUpdate) (models.User, error)
	// List returns accounts matching the query (name or email substring),
	// ordered by name.
	List(ctx context.Context, query string, limit, offset int) ([]models.User, error)
	// AdminUpdate applies credit and role mutations to the account with the
	// given id.
	AdminUpdate(ctx context.Context, id string, update AdminUserUpdate) (models.User, error)
	Delete(ctx context.Context, id string) error
}
