package httpserver

import (
	"errors"
	"net/http"

	identityerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	identityhttp "agentdesk/contexts/identity-access/agent-directory/transport/http"
	distributionerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var domainErrorMappings = []errorMapping{
	{identityerrors.ErrInvalidAgentInput, http.StatusBadRequest, "invalid_agent_input"},
	{identityerrors.ErrInvalidPhoneNumber, http.StatusBadRequest, "invalid_phone_number"},
	{identityerrors.ErrInvalidLoginInput, http.StatusBadRequest, "invalid_login_input"},
	{identityerrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{identityerrors.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{identityerrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{identityerrors.ErrForbidden, http.StatusForbidden, "forbidden"},
	{identityerrors.ErrUserNotFound, http.StatusNotFound, "agent_not_found"},
	{identityerrors.ErrEmailExists, http.StatusConflict, "email_exists"},

	{distributionerrors.ErrFileRequired, http.StatusBadRequest, "file_required"},
	{distributionerrors.ErrUnsupportedFileType, http.StatusBadRequest, "unsupported_file_type"},
	{distributionerrors.ErrParseFailure, http.StatusBadRequest, "parse_failure"},
	{distributionerrors.ErrEmptyResult, http.StatusBadRequest, "empty_result"},
	{distributionerrors.ErrInsufficientWorkers, http.StatusBadRequest, "insufficient_agents"},
	{distributionerrors.ErrInvalidPage, http.StatusBadRequest, "invalid_pagination"},
	{distributionerrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
	{distributionerrors.ErrBatchNotFound, http.StatusNotFound, "batch_not_found"},
	{distributionerrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{distributionerrors.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// writeDomainError maps sentinel errors of both contexts to status codes.
// Client errors carry the wrapped message; anything unmapped is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, mapping := range domainErrorMappings {
		if errors.Is(err, mapping.target) {
			writeError(w, mapping.status, mapping.code, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, identityhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
