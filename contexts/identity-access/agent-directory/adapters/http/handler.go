package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agentdesk/contexts/identity-access/agent-directory/application"
	"agentdesk/contexts/identity-access/agent-directory/application/commands"
	"agentdesk/contexts/identity-access/agent-directory/application/queries"
	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	httptransport "agentdesk/contexts/identity-access/agent-directory/transport/http"
)

type Handler struct {
	Login        commands.LoginUseCase
	CreateAgent  commands.CreateAgentUseCase
	DeleteAgent  commands.DeleteAgentUseCase
	ListAgents   queries.ListAgentsUseCase
	Authenticate queries.AuthenticateUseCase
	Logger       *slog.Logger
}

// LoginHandler godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer token.
// @Tags agent-directory
// @Accept json
// @Produce json
// @Param request body httptransport.LoginRequest true "Credentials"
// @Success 200 {object} httptransport.LoginResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /api/auth/login [post]
func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.LoginResponse, error) {
	result, err := h.Login.Execute(ctx, commands.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		application.ResolveLogger(h.Logger).Warn("login request failed",
			"event", "http_login_failed",
			"module", "identity-access/agent-directory",
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.LoginResponse{}, err
	}
	return httptransport.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      mapUser(result.User),
	}, nil
}

// AuthenticateHandler resolves a raw bearer token for the HTTP middleware.
func (h Handler) AuthenticateHandler(ctx context.Context, token string) (entities.Principal, error) {
	return h.Authenticate.Execute(ctx, token)
}

// CreateAgentHandler godoc
// @Summary Create agent
// @Description Registers a new agent account. Admin only.
// @Tags agent-directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body httptransport.CreateAgentRequest true "Agent"
// @Success 201 {object} httptransport.CreateAgentResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/agents [post]
func (h Handler) CreateAgentHandler(
	ctx context.Context,
	principal entities.Principal,
	req httptransport.CreateAgentRequest,
) (httptransport.CreateAgentResponse, error) {
	agent, err := h.CreateAgent.Execute(ctx, commands.CreateAgentCommand{
		Principal: principal,
		Name:      req.Name,
		Email:     req.Email,
		Mobile:    req.Mobile,
		Password:  req.Password,
	})
	if err != nil {
		return httptransport.CreateAgentResponse{}, err
	}
	return httptransport.CreateAgentResponse{
		Message: "agent created successfully",
		Agent:   mapUser(agent),
	}, nil
}

// ListAgentsHandler godoc
// @Summary List agents
// @Description Returns all agents, newest first.
// @Tags agent-directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httptransport.ListAgentsResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /api/agents [get]
func (h Handler) ListAgentsHandler(ctx context.Context, principal entities.Principal) (httptransport.ListAgentsResponse, error) {
	agents, err := h.ListAgents.Execute(ctx, principal)
	if err != nil {
		return httptransport.ListAgentsResponse{}, err
	}
	items := make([]httptransport.UserDTO, 0, len(agents))
	for _, agent := range agents {
		items = append(items, mapUser(agent))
	}
	return httptransport.ListAgentsResponse{Items: items}, nil
}

// DeleteAgentHandler godoc
// @Summary Delete agent
// @Description Removes an agent account. Existing batches keep their assignments. Admin only.
// @Tags agent-directory
// @Produce json
// @Security BearerAuth
// @Param agent_id path string true "Agent id"
// @Success 200 {object} httptransport.DeleteAgentResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/agents/{agent_id} [delete]
func (h Handler) DeleteAgentHandler(ctx context.Context, principal entities.Principal, agentID string) (httptransport.DeleteAgentResponse, error) {
	if err := h.DeleteAgent.Execute(ctx, commands.DeleteAgentCommand{
		Principal: principal,
		AgentID:   agentID,
	}); err != nil {
		return httptransport.DeleteAgentResponse{}, err
	}
	return httptransport.DeleteAgentResponse{Message: "agent deleted successfully"}, nil
}

func mapUser(user entities.User) httptransport.UserDTO {
	return httptransport.UserDTO{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Mobile:    user.Mobile,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
