package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/opendao/assembly/internal/activity/domain"
	organizationdomain "github.com/opendao/assembly/internal/organization/domain"
	proposaldomain "github.com/opendao/assembly/internal/proposal/domain"
	"gorm.io/gorm"
)

type errorResponse struct {
	Error string `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

// ErrorHandlingMiddleware writes the response for any error a handler
// attached via AbortWithError. Handlers that already wrote a body are left
// alone.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, proposaldomain.ErrNotActive):
		return http.StatusBadRequest, proposaldomain.ErrNotActive.Error()
	case errors.Is(err, organizationdomain.ErrForbidden):
		return http.StatusForbidden, organizationdomain.ErrForbidden.Error()
	case errors.Is(err, proposaldomain.ErrNotMember):
		return http.StatusForbidden, proposaldomain.ErrNotMember.Error()
	case isNotFoundError(err):
		return http.StatusNotFound, notFoundMessage(err)
	case isConflictError(err):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidCreator),
		errors.Is(err, organizationdomain.ErrInvalidAddress),
		errors.Is(err, organizationdomain.ErrInvalidAmount),
		errors.Is(err, proposaldomain.ErrInvalidTitle),
		errors.Is(err, proposaldomain.ErrInvalidProposer),
		errors.Is(err, proposaldomain.ErrInvalidVoter),
		errors.Is(err, proposaldomain.ErrInvalidChoice),
		errors.Is(err, activitydomain.ErrInvalidAction):
		return true
	default:
		return false
	}
}

// Unparseable path identifiers can only mean the referenced row does not
// exist, so they map to not found rather than validation.
func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, organizationdomain.ErrInvalidOrganization),
		errors.Is(err, proposaldomain.ErrNotFound),
		errors.Is(err, proposaldomain.ErrInvalidProposal),
		errors.Is(err, activitydomain.ErrInvalidOrganization),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, organizationdomain.ErrInvalidOrganization),
		errors.Is(err, activitydomain.ErrInvalidOrganization):
		return organizationdomain.ErrNotFound.Error()
	case errors.Is(err, proposaldomain.ErrInvalidProposal):
		return proposaldomain.ErrNotFound.Error()
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "not_found"
	default:
		return err.Error()
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, organizationdomain.ErrDuplicateName),
		errors.Is(err, organizationdomain.ErrDuplicateMember),
		errors.Is(err, proposaldomain.ErrDuplicateVote):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, message := mapError(err)
	switch {
	case status == http.StatusBadRequest:
		return "validation_error", message
	case status == http.StatusForbidden:
		return "forbidden", message
	case status == http.StatusNotFound:
		return "not_found", message
	case status == http.StatusConflict:
		return "conflict", message
	default:
		return "internal_error", message
	}
}
