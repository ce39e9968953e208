package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "agentdesk/contexts/identity-access/agent-directory/application"
	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/domain/services"
	"agentdesk/contexts/identity-access/agent-directory/ports"

	"github.com/hashicorp/go-multierror"
)

type LoginCommand struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      entities.User
}

type LoginUseCase struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Tokens ports.TokenIssuer
	Clock  ports.Clock
	Logger *slog.Logger
}

// Execute checks credentials and issues a bearer token. Unknown emails and wrong
// passwords fail with the same error.
func (u LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if fieldErrors := services.LoginFieldErrors(cmd.Email, cmd.Password); len(fieldErrors) > 0 {
		var result *multierror.Error
		for _, fieldErr := range fieldErrors {
			result = multierror.Append(result, fieldErr)
		}
		result.ErrorFormat = joinFieldErrors
		return LoginResult{}, result.ErrorOrNil()
	}

	email := services.NormalizeEmail(cmd.Email)
	user, err := u.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			logger.Warn("login unknown email",
				"event", "agent_directory_login_unknown_email",
				"module", "identity-access/agent-directory",
				"layer", "application",
			)
			return LoginResult{}, domainerrors.ErrInvalidCredentials
		}
		logger.Error("login user lookup failed",
			"event", "agent_directory_login_lookup_failed",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"error", err.Error(),
		)
		return LoginResult{}, err
	}
	if err := u.Hasher.Compare(user.PasswordHash, cmd.Password); err != nil {
		logger.Warn("login password mismatch",
			"event", "agent_directory_login_password_mismatch",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"user_id", user.UserID,
		)
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}

	token, expiresAt, err := u.Tokens.Issue(user, u.Clock.Now().UTC())
	if err != nil {
		logger.Error("login token issue failed",
			"event", "agent_directory_login_token_failed",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"user_id", user.UserID,
			"error", err.Error(),
		)
		return LoginResult{}, err
	}

	logger.Info("user logged in",
		"event", "agent_directory_login_succeeded",
		"module", "identity-access/agent-directory",
		"layer", "application",
		"user_id", user.UserID,
		"role", string(user.Role),
	)
	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
