package commands

import (
	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
)

func requireAdmin(principal entities.Principal) error {
	if !principal.Authenticated() {
		return domainerrors.ErrUnauthorized
	}
	if !principal.IsAdmin() {
		return domainerrors.ErrForbidden
	}
	return nil
}
