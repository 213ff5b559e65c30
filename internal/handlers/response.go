package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtl-infra/capworks-backend/internal/domain"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Target  string `json:"target,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
			Target:  domain.TargetOf(err),
		},
	})
}

// RespondDomainError maps the stable domain error codes onto transport
// statuses.
func RespondDomainError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	switch code {
	case domain.CodeNotFound:
		RespondError(c, http.StatusNotFound, string(code), err)
	case domain.CodeValidation, domain.CodeInvalidTransition, domain.CodeMissingPrecondition, domain.CodeInvariantViolation:
		RespondError(c, http.StatusUnprocessableEntity, string(code), err)
	case domain.CodeCascadeFailure:
		RespondError(c, http.StatusInternalServerError, string(code), err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
