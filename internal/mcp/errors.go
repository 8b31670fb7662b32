package mcp

import (
	"errors"
	"fmt"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/domain/project"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var errNoAccount = errors.New("no acting account")

// MapError maps domain errors to MCP error codes. Unknown errors yield nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var persistErr *project.PersistenceError
	switch {
	case errors.Is(err, errNoAccount):
		return &APIError{Code: "UNAUTHORIZED", Message: "no acting account", RecoveryHint: "Pass a bearer token or set auth.default_account"}
	case errors.Is(err, account.ErrInvalidToken):
		return &APIError{Code: "UNAUTHORIZED", Message: "invalid api key", RecoveryHint: "Register an account to obtain a key"}
	case errors.Is(err, project.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: err.Error(), RecoveryHint: "Only the project's participants may act on it"}
	case errors.Is(err, project.ErrInvalidState):
		return &APIError{Code: "INVALID_STATE", Message: err.Error(), RecoveryHint: "Reload the project and check its status"}
	case errors.Is(err, project.ErrValidation),
		errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid IDs"}
	case errors.Is(err, account.ErrAccountNotFound):
		return &APIError{Code: "ACCOUNT_NOT_FOUND", Message: "account not found"}
	case errors.As(err, &persistErr):
		return &APIError{Code: "PERSISTENCE_ERROR", Message: err.Error(), RecoveryHint: "Retry the operation"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
