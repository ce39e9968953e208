package queries

import (
	"context"
	"log/slog"
	"strings"

	application "agentdesk/contexts/identity-access/agent-directory/application"
	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/ports"
)

type AuthenticateUseCase struct {
	Tokens ports.TokenVerifier
	Clock  ports.Clock
	Logger *slog.Logger
}

// Execute resolves a bearer token into the caller principal.
func (u AuthenticateUseCase) Execute(_ context.Context, token string) (entities.Principal, error) {
	logger := application.ResolveLogger(u.Logger)
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.Principal{}, domainerrors.ErrUnauthorized
	}
	claims, err := u.Tokens.Verify(token, u.Clock.Now().UTC())
	if err != nil {
		logger.Debug("bearer token rejected",
			"event", "agent_directory_token_rejected",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.Principal{}, domainerrors.ErrUnauthorized
	}
	if strings.TrimSpace(claims.UserID) == "" || !claims.Role.Valid() {
		return entities.Principal{}, domainerrors.ErrUnauthorized
	}
	return entities.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}
