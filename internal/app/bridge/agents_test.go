package bridge

import (
	"context"
	"testing"
	"time"

	identitymemory "agentdesk/contexts/identity-access/agent-directory/adapters/memory"
	identityentities "agentdesk/contexts/identity-access/agent-directory/domain/entities"
)

func TestAgentWorkersListsOnlyAgentsNewestFirst(t *testing.T) {
	store := identitymemory.NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []identityentities.User{
		{UserID: "admin", Name: "Admin", Email: "admin@example.com", Role: identityentities.RoleAdmin, CreatedAt: base.Add(3 * time.Hour)},
		{UserID: "agent-old", Name: "Old", Email: "old@example.com", Role: identityentities.RoleAgent, CreatedAt: base},
		{UserID: "agent-new", Name: "New", Email: "new@example.com", Role: identityentities.RoleAgent, CreatedAt: base.Add(time.Hour)},
	}
	for _, user := range users {
		if err := store.CreateUser(context.Background(), user); err != nil {
			t.Fatalf("seed user failed: %v", err)
		}
	}

	directory := AgentWorkers{Users: store}
	workers, err := directory.ListEligibleWorkers(context.Background())
	if err != nil {
		t.Fatalf("list workers failed: %v", err)
	}
	if len(workers) != 2 || workers[0].ID != "agent-new" || workers[1].ID != "agent-old" {
		t.Fatalf("unexpected workers %+v", workers)
	}
	if workers[0].DisplayName != "New" || !workers[0].CreatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected worker mapping %+v", workers[0])
	}

	count, err := directory.CountWorkers(context.Background())
	if err != nil || count != 2 {
		t.Fatalf("expected 2 workers, got %d err=%v", count, err)
	}
}
