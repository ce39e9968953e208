package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "agentdesk/contexts/identity-access/agent-directory/application"
	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/domain/services"
	"agentdesk/contexts/identity-access/agent-directory/ports"

	"github.com/hashicorp/go-multierror"
)

type CreateAgentCommand struct {
	Principal entities.Principal
	Name      string
	Email     string
	Mobile    string
	Password  string
}

type CreateAgentUseCase struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Phones ports.PhoneValidator
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute validates every field up front and reports all failures together.
func (u CreateAgentUseCase) Execute(ctx context.Context, cmd CreateAgentCommand) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := requireAdmin(cmd.Principal); err != nil {
		logger.Warn("create agent rejected for caller",
			"event", "agent_directory_create_agent_forbidden",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"user_id", cmd.Principal.UserID,
			"role", string(cmd.Principal.Role),
		)
		return entities.User{}, err
	}

	if err := u.validate(cmd); err != nil {
		logger.Warn("create agent input rejected",
			"event", "agent_directory_create_agent_invalid_input",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"admin_id", cmd.Principal.UserID,
			"error", err.Error(),
		)
		return entities.User{}, err
	}

	hash, err := u.Hasher.Hash(cmd.Password)
	if err != nil {
		logger.Error("create agent password hash failed",
			"event", "agent_directory_create_agent_hash_failed",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.User{}, err
	}
	userID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}

	now := u.Clock.Now().UTC()
	agent := entities.User{
		UserID:       userID,
		Name:         strings.TrimSpace(cmd.Name),
		Email:        services.NormalizeEmail(cmd.Email),
		Mobile:       strings.TrimSpace(cmd.Mobile),
		PasswordHash: hash,
		Role:         entities.RoleAgent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Users.CreateUser(ctx, agent); err != nil {
		if errors.Is(err, domainerrors.ErrEmailExists) {
			logger.Warn("create agent duplicate email",
				"event", "agent_directory_create_agent_email_exists",
				"module", "identity-access/agent-directory",
				"layer", "application",
				"email", agent.Email,
			)
			return entities.User{}, err
		}
		logger.Error("create agent persist failed",
			"event", "agent_directory_create_agent_persist_failed",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"user_id", agent.UserID,
			"error", err.Error(),
		)
		return entities.User{}, err
	}

	logger.Info("agent created",
		"event", "agent_directory_agent_created",
		"module", "identity-access/agent-directory",
		"layer", "application",
		"user_id", agent.UserID,
		"admin_id", cmd.Principal.UserID,
	)
	return agent, nil
}

func (u CreateAgentUseCase) validate(cmd CreateAgentCommand) error {
	var result *multierror.Error
	fieldErrors := services.AgentFieldErrors(cmd.Name, cmd.Email, cmd.Mobile, cmd.Password)
	mobileShapeOK := true
	for _, fieldErr := range fieldErrors {
		if fieldErr.Field == "mobile" {
			mobileShapeOK = false
		}
		result = multierror.Append(result, fieldErr)
	}
	if mobileShapeOK && u.Phones != nil && !u.Phones.Valid(strings.TrimSpace(cmd.Mobile)) {
		result = multierror.Append(result, services.FieldError{
			Field:   "mobile",
			Message: "invalid phone number",
			Kind:    domainerrors.ErrInvalidPhoneNumber,
		})
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = joinFieldErrors
	return result.ErrorOrNil()
}

func joinFieldErrors(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
