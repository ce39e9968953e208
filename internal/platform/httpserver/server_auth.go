package httpserver

import (
	"context"
	"net/http"
	"strings"

	identityentities "agentdesk/contexts/identity-access/agent-directory/domain/entities"
	distributionports "agentdesk/contexts/list-distribution/distribution-service/ports"
)

type principalKey struct{}

// authenticated resolves the bearer token before the route handler runs.
// Role checks stay in the use cases.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "bearer token is required")
			return
		}
		principal, err := s.identity.Handler.AuthenticateHandler(r.Context(), token)
		if err != nil {
			s.logger.Warn("request authentication failed",
				"event", "http_authentication_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"path", r.URL.Path,
				"error", err.Error(),
			)
			writeDomainError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func identityPrincipal(r *http.Request) identityentities.Principal {
	principal, _ := r.Context().Value(principalKey{}).(identityentities.Principal)
	return principal
}

func distributionPrincipal(r *http.Request) distributionports.Principal {
	principal := identityPrincipal(r)
	return distributionports.Principal{
		UserID: principal.UserID,
		Role:   distributionports.Role(principal.Role),
	}
}
