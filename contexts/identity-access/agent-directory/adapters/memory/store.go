package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/ports"

	"github.com/google/uuid"
)

// Store is the in-memory user adapter for development and tests.
type Store struct {
	mu      sync.RWMutex
	users   map[string]entities.User
	byEmail map[string]string
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]entities.User),
		byEmail: make(map[string]string),
	}
}

func (s *Store) CreateUser(_ context.Context, user entities.User) error {
	if strings.TrimSpace(user.UserID) == "" || strings.TrimSpace(user.Email) == "" || !user.Role.Valid() {
		return domainerrors.ErrInvalidAgentInput
	}
	email := strings.ToLower(strings.TrimSpace(user.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return domainerrors.ErrEmailExists
	}
	if _, exists := s.users[user.UserID]; exists {
		return domainerrors.ErrInvalidAgentInput
	}
	user.Email = email
	s.users[user.UserID] = user
	s.byEmail[email] = user.UserID
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, exists := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !exists {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return s.users[userID], nil
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[strings.TrimSpace(userID)]
	if !exists {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) ListAgents(_ context.Context) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]entities.User, 0, len(s.users))
	for _, user := range s.users {
		if user.Role == entities.RoleAgent {
			agents = append(agents, user)
		}
	}
	sort.Slice(agents, func(i, j int) bool {
		if !agents[i].CreatedAt.Equal(agents[j].CreatedAt) {
			return agents[i].CreatedAt.After(agents[j].CreatedAt)
		}
		return agents[i].UserID < agents[j].UserID
	})
	return agents, nil
}

func (s *Store) DeleteAgent(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[strings.TrimSpace(userID)]
	if !exists || user.Role != entities.RoleAgent {
		return domainerrors.ErrUserNotFound
	}
	delete(s.users, user.UserID)
	delete(s.byEmail, user.Email)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.UserRepository = (*Store)(nil)
	_ ports.Clock          = (*Store)(nil)
	_ ports.IDGenerator    = (*Store)(nil)
)
