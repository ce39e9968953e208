package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "agentdesk/contexts/identity-access/agent-directory/application"
	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/domain/services"
	"agentdesk/contexts/identity-access/agent-directory/ports"
)

type EnsureAdminCommand struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

type EnsureAdminUseCase struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute creates the admin account unless one with the same email already exists.
// The returned flag reports whether a new account was written.
func (u EnsureAdminUseCase) Execute(ctx context.Context, cmd EnsureAdminCommand) (entities.User, bool, error) {
	logger := application.ResolveLogger(u.Logger)
	email := services.NormalizeEmail(cmd.Email)
	if fieldErrors := services.LoginFieldErrors(email, cmd.Password); len(fieldErrors) > 0 {
		return entities.User{}, false, fmt.Errorf("seed admin: %w", fieldErrors[0])
	}

	existing, err := u.Users.GetUserByEmail(ctx, email)
	if err == nil {
		logger.Info("admin account already present",
			"event", "agent_directory_admin_exists",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"user_id", existing.UserID,
		)
		return existing, false, nil
	}
	if !errors.Is(err, domainerrors.ErrUserNotFound) {
		return entities.User{}, false, err
	}

	hash, err := u.Hasher.Hash(cmd.Password)
	if err != nil {
		return entities.User{}, false, err
	}
	userID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return entities.User{}, false, err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		name = "Admin User"
	}
	now := u.Clock.Now().UTC()
	admin := entities.User{
		UserID:       userID,
		Name:         name,
		Email:        email,
		Mobile:       strings.TrimSpace(cmd.Mobile),
		PasswordHash: hash,
		Role:         entities.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Users.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, domainerrors.ErrEmailExists) {
			existing, lookupErr := u.Users.GetUserByEmail(ctx, email)
			if lookupErr != nil {
				return entities.User{}, false, lookupErr
			}
			return existing, false, nil
		}
		return entities.User{}, false, err
	}

	logger.Info("admin account created",
		"event", "agent_directory_admin_created",
		"module", "identity-access/agent-directory",
		"layer", "application",
		"user_id", admin.UserID,
		"email", admin.Email,
	)
	return admin, true, nil
}
