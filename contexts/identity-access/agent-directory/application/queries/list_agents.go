package queries

import (
	"context"
	"log/slog"

	application "agentdesk/contexts/identity-access/agent-directory/application"
	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/ports"
)

type ListAgentsUseCase struct {
	Users  ports.UserRepository
	Logger *slog.Logger
}

// Execute lists agents newest first for any authenticated caller.
func (u ListAgentsUseCase) Execute(ctx context.Context, principal entities.Principal) ([]entities.User, error) {
	logger := application.ResolveLogger(u.Logger)
	if !principal.Authenticated() {
		return nil, domainerrors.ErrUnauthorized
	}
	agents, err := u.Users.ListAgents(ctx)
	if err != nil {
		logger.Error("list agents failed",
			"event", "agent_directory_list_agents_failed",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}
	for i := range agents {
		agents[i].PasswordHash = ""
	}
	return agents, nil
}
