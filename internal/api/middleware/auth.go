package middleware

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/core/ports"
)

const actorKey = "actor"

// SetActor attaches the authenticated actor to the request.
func SetActor(c echo.Context, actor *domain.Actor) {
	c.Set(actorKey, actor)
}

// ActorFrom returns the actor attached by Authenticate, or nil for an
// unauthenticated request.
func ActorFrom(c echo.Context) *domain.Actor {
	actor, _ := c.Get(actorKey).(*domain.Actor)
	return actor
}

// Authenticate parses Basic or Bearer credentials and injects the verified
// actor into context. A request without an Authorization header passes
// through anonymously; the policy decides whether that is enough. Malformed
// or wrong credentials are rejected with domain.ErrInvalidCredentials.
func Authenticate(verifier ports.CredentialVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			creds, err := parseCredentials(authHeader)
			if err != nil {
				return err
			}

			actor, err := verifier.Verify(c.Request().Context(), creds)
			if err != nil {
				return err
			}

			SetActor(c, actor)
			return next(c)
		}
	}
}

func parseCredentials(header string) (ports.Credentials, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return ports.Credentials{}, fmt.Errorf("%w: malformed authorization header", domain.ErrInvalidCredentials)
	}
	value := strings.TrimSpace(parts[1])

	switch {
	case strings.EqualFold(parts[0], "bearer"):
		return ports.Credentials{Scheme: ports.SchemeBearer, Token: value}, nil
	case strings.EqualFold(parts[0], "basic"):
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return ports.Credentials{}, fmt.Errorf("%w: malformed basic credentials", domain.ErrInvalidCredentials)
		}
		username, password, ok := strings.Cut(string(raw), ":")
		if !ok {
			return ports.Credentials{}, fmt.Errorf("%w: basic credentials need user:password", domain.ErrInvalidCredentials)
		}
		return ports.Credentials{Scheme: ports.SchemeBasic, Username: username, Password: password}, nil
	default:
		return ports.Credentials{}, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidCredentials, parts[0])
	}
}
