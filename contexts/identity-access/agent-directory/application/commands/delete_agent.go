package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "agentdesk/contexts/identity-access/agent-directory/application"
	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/ports"
)

type DeleteAgentCommand struct {
	Principal entities.Principal
	AgentID   string
}

type DeleteAgentUseCase struct {
	Users  ports.UserRepository
	Logger *slog.Logger
}

// Execute removes an agent account. Batches already assigned to the agent are kept as they are.
func (u DeleteAgentUseCase) Execute(ctx context.Context, cmd DeleteAgentCommand) error {
	logger := application.ResolveLogger(u.Logger)
	if err := requireAdmin(cmd.Principal); err != nil {
		return err
	}
	agentID := strings.TrimSpace(cmd.AgentID)
	if agentID == "" {
		return domainerrors.ErrUserNotFound
	}

	if err := u.Users.DeleteAgent(ctx, agentID); err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			logger.Warn("delete agent target missing",
				"event", "agent_directory_delete_agent_not_found",
				"module", "identity-access/agent-directory",
				"layer", "application",
				"agent_id", agentID,
			)
			return err
		}
		logger.Error("delete agent failed",
			"event", "agent_directory_delete_agent_failed",
			"module", "identity-access/agent-directory",
			"layer", "application",
			"agent_id", agentID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("agent deleted",
		"event", "agent_directory_agent_deleted",
		"module", "identity-access/agent-directory",
		"layer", "application",
		"agent_id", agentID,
		"admin_id", cmd.Principal.UserID,
	)
	return nil
}
