package auth

import "context"

// IdentityStore persists identities. Implementations return ErrIdentityNotFound
// for unknown ids or emails and ErrDuplicateEmail when the email is taken.
// Role is never updated after creation.
type IdentityStore interface {
	CreateIdentity(ctx context.Context, id Identity) error
	IdentityByID(ctx context.Context, id string) (Identity, error)
	IdentityByEmail(ctx context.Context, email string) (Identity, error)
	CountIdentities(ctx context.Context, filter IdentityFilter) (int, error)
	// ListIdentities returns the newest identities first.
	ListIdentities(ctx context.Context, filter IdentityFilter) ([]Identity, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SetProfilePicture(ctx context.Context, id, dataURL string) error
	SetResume(ctx context.Context, id string, resume Resume) error
}

// IdentityLookup is the read side needed to authenticate requests.
type IdentityLookup interface {
	IdentityByID(ctx context.Context, id string) (Identity, error)
}
