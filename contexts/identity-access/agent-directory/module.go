package agentdirectory

import (
	"log/slog"

	httpadapter "agentdesk/contexts/identity-access/agent-directory/adapters/http"
	"agentdesk/contexts/identity-access/agent-directory/adapters/memory"
	"agentdesk/contexts/identity-access/agent-directory/application/commands"
	"agentdesk/contexts/identity-access/agent-directory/application/queries"
	"agentdesk/contexts/identity-access/agent-directory/ports"
)

// Module is the agent-directory composition root exposed to runtime wiring.
type Module struct {
	Handler     httpadapter.Handler
	EnsureAdmin commands.EnsureAdminUseCase
	Users       ports.UserRepository
	Store       *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Tokens TokenCodec
	Phones ports.PhoneValidator
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// TokenCodec both issues and verifies bearer tokens.
type TokenCodec interface {
	ports.TokenIssuer
	ports.TokenVerifier
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Login: commands.LoginUseCase{
				Users:  deps.Users,
				Hasher: deps.Hasher,
				Tokens: deps.Tokens,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			CreateAgent: commands.CreateAgentUseCase{
				Users:  deps.Users,
				Hasher: deps.Hasher,
				Phones: deps.Phones,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			DeleteAgent: commands.DeleteAgentUseCase{
				Users:  deps.Users,
				Logger: deps.Logger,
			},
			ListAgents: queries.ListAgentsUseCase{
				Users:  deps.Users,
				Logger: deps.Logger,
			},
			Authenticate: queries.AuthenticateUseCase{
				Tokens: deps.Tokens,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			Logger: deps.Logger,
		},
		EnsureAdmin: commands.EnsureAdminUseCase{
			Users:  deps.Users,
			Hasher: deps.Hasher,
			Clock:  deps.Clock,
			IDGen:  deps.IDGen,
			Logger: deps.Logger,
		},
		Users: deps.Users,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory storage.
func NewInMemoryModule(hasher ports.PasswordHasher, tokens TokenCodec, phones ports.PhoneValidator, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Users:  store,
		Hasher: hasher,
		Tokens: tokens,
		Phones: phones,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
