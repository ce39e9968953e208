// Package bridge adapts one context's ports to another's where the runtime
// has no shared table to read from.
package bridge

import (
	"context"

	identityports "agentdesk/contexts/identity-access/agent-directory/ports"
	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	distributionports "agentdesk/contexts/list-distribution/distribution-service/ports"
)

// AgentWorkers exposes agent-directory accounts as distribution workers.
// Postgres deployments read the users table directly instead.
type AgentWorkers struct {
	Users identityports.UserRepository
}

func (a AgentWorkers) ListEligibleWorkers(ctx context.Context) ([]entities.Worker, error) {
	users, err := a.Users.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]entities.Worker, 0, len(users))
	for _, user := range users {
		items = append(items, entities.Worker{
			ID:          user.UserID,
			DisplayName: user.Name,
			CreatedAt:   user.CreatedAt,
		})
	}
	return items, nil
}

func (a AgentWorkers) CountWorkers(ctx context.Context) (int, error) {
	users, err := a.Users.ListAgents(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

var _ distributionports.WorkerDirectory = AgentWorkers{}
