package ports

import (
	"context"
	"time"

	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for user ids.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// UserRepository stores admin and agent accounts.
// CreateUser returns ErrEmailExists when the normalized email is taken.
// ListAgents returns role=agent users newest first, ties broken by id ascending.
type UserRepository interface {
	CreateUser(ctx context.Context, user entities.User) error
	GetUserByEmail(ctx context.Context, email string) (entities.User, error)
	GetUser(ctx context.Context, userID string) (entities.User, error)
	ListAgents(ctx context.Context) ([]entities.User, error)
	DeleteAgent(ctx context.Context, userID string) error
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(user entities.User, now time.Time) (token string, expiresAt time.Time, err error)
}

// TokenVerifier validates bearer tokens and returns their claims.
type TokenVerifier interface {
	Verify(token string, now time.Time) (entities.TokenClaims, error)
}

// PhoneValidator checks that a mobile number is a dialable international number.
type PhoneValidator interface {
	Valid(mobile string) bool
}
