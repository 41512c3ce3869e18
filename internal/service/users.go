package service

import (
	"context"
	"errors"
	"strings"

	"ticketdesk/internal/auth"
	"ticketdesk/internal/models"

	"github.com/google/uuid"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required"`
}

type UserPatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email" validate:"omitempty,mailbox"`
	Password *string `json:"password"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
}

// Register creates a regular user and signs them in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (models.User, string, error) {
	user, err := s.CreateWithRole(ctx, input, models.RoleUser)
	if err != nil {
		return models.User{}, "", err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// CreateWithRole is Register without the role restriction. Only trusted
// callers such as the CLI reach it.
func (s *Service) CreateWithRole(ctx context.Context, input RegisterInput, role string) (models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return models.User{}, err
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return models.User{}, newError(ErrValidation, "role must be one of [admin user]")
	}

	now := s.now()
	user := models.User{
		UserID:    uuid.NewString(),
		Username:  input.Username,
		Email:     input.Email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := setPassword(&user, input.Password); err != nil {
		return models.User{}, err
	}

	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, storeError("create user", err)
	}
	s.logger.Info("user created", "user_id", created.UserID, "role", created.Role)
	return created, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (models.User, error) {
	if !isValidUUID(userID) {
		return models.User{}, newError(ErrNotFound, "user not found")
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, storeError("get user", err)
	}
	return user, nil
}

// UpdateUser applies patch to a user. Changing the role requires the caller
// to hold the admin role at the time of the call.
func (s *Service) UpdateUser(ctx context.Context, caller Identity, userID string, patch UserPatch) (models.User, error) {
	patch.Username = trimmed(patch.Username)
	patch.Email = trimmed(patch.Email)
	patch.Role = trimmed(patch.Role)
	if err := validateStruct(patch); err != nil {
		return models.User{}, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	if patch.Role != nil && *patch.Role != user.Role {
		if _, err := s.RequireAdmin(ctx, caller); err != nil {
			return models.User{}, denied(err, "only admins may change roles")
		}
		user.Role = *patch.Role
	}
	if patch.Username != nil {
		if *patch.Username == "" {
			return models.User{}, newError(ErrValidation, "username is required")
		}
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		if *patch.Email == "" {
			return models.User{}, newError(ErrValidation, "email is required")
		}
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		if err := setPassword(&user, *patch.Password); err != nil {
			return models.User{}, err
		}
	}
	user.UpdatedAt = s.now()

	updated, err := s.store.UpdateUser(ctx, user)
	if err != nil {
		return models.User{}, storeError("update user", err)
	}
	return updated, nil
}

func (s *Service) RemoveUser(ctx context.Context, userID string) error {
	if !isValidUUID(userID) {
		return newError(ErrNotFound, "user not found")
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return storeError("delete user", err)
	}
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

func setPassword(user *models.User, raw string) error {
	if err := auth.SetPassword(user, raw); err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return newError(ErrValidation, "%s", err.Error())
		}
		return err
	}
	return nil
}
