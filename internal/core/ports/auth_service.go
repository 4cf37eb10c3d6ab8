package ports

import (
	"context"

	"github.com/taskflow/task-service/internal/core/domain"
)

// CredentialScheme names how a request presented its credentials.
type CredentialScheme string

const (
	SchemeBasic  CredentialScheme = "basic"
	SchemeBearer CredentialScheme = "bearer"
)

// Credentials are the raw values parsed from the Authorization header.
type Credentials struct {
	Scheme   CredentialScheme
	Username string // basic
	Password string // basic
	Token    string // bearer
}

// CredentialVerifier turns request credentials into an Actor.
// Bad credentials yield domain.ErrInvalidCredentials.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds Credentials) (*domain.Actor, error)
}

// AuthService issues tokens and verifies credentials.
type AuthService interface {
	CredentialVerifier
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
