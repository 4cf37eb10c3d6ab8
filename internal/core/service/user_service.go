package service

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/core/ports"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 12

// UserService manages user accounts. Passwords are hashed before they reach
// the repository.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) FindAll(ctx context.Context) ([]*domain.User, error) {
	return s.repo.FindAll(ctx)
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new user with a fresh id. Roles default to USER.
func (s *UserService) Create(ctx context.Context, input ports.UpsertUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, domain.Validationf("username is required")
	}
	if input.Password == "" {
		return nil, domain.Validationf("password is required")
	}
	roles, err := normalizeRoles(input.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    input.Email,
		Password: hash,
		Roles:    roles,
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return user, nil
}

// Update merges the supplied fields into the stored user. A supplied password
// is hashed again even when it matches the current one.
func (s *UserService) Update(ctx context.Context, id string, input ports.UpsertUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if username := strings.TrimSpace(input.Username); username != "" {
		user.Username = username
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Roles != nil {
		roles, err := normalizeRoles(input.Roles)
		if err != nil {
			return nil, err
		}
		if len(roles) == 0 {
			return nil, domain.Validationf("roles must not be empty")
		}
		user.Roles = roles
	}
	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user updated")
	return user, nil
}

// Delete removes the user. Tasks that reference it are left as they are.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// normalizeRoles validates roles and removes duplicates.
func normalizeRoles(roles []domain.Role) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		r = domain.Role(strings.ToUpper(string(r)))
		if !r.Valid() {
			return nil, domain.Validationf("unknown role %q", r)
		}
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out, nil
}
