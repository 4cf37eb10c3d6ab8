// Package dto holds the JSON wire types shared by both request surfaces and
// their mapping to service inputs and from domain results.
package dto

import (
	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/core/ports"
)

type CreateUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email,omitempty" validate:"omitempty,email"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles,omitempty"`
}

// UpdateUserRequest is a partial update; empty fields are left untouched.
type UpdateUserRequest struct {
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty" validate:"omitempty,email"`
	Password string   `json:"password,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

type UserResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func (r CreateUserRequest) ToInput() ports.UpsertUserInput {
	return ports.UpsertUserInput{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Roles:    toRoles(r.Roles),
	}
}

func (r UpdateUserRequest) ToInput() ports.UpsertUserInput {
	return ports.UpsertUserInput{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Roles:    toRoles(r.Roles),
	}
}

func ToUserResponse(u *domain.User) UserResponse {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Roles: roles}
}

func ToUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}

// toRoles keeps nil as nil so "not supplied" survives the mapping.
func toRoles(in []string) []domain.Role {
	if in == nil {
		return nil
	}
	out := make([]domain.Role, len(in))
	for i, r := range in {
		out[i] = domain.Role(r)
	}
	return out
}
