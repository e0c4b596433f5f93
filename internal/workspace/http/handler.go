// Package http exposes the workspace service over gin.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiodesk/studio-backend/internal/logger"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/service"
)

// Handler bundles the dependencies for workspace HTTP endpoints.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func id(c *gin.Context, name string) domain.ID {
	return domain.ID(c.Param(name))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

// StatusFor maps a workspace error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrStorageQuota):
		return http.StatusInsufficientStorage
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrSectionNotFound),
		errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrNoEngineers):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrCommentRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("workspace request failed",
			"path", c.FullPath(), "status", code, "error", err)
	}
	c.JSON(code, gin.H{"ok": false, "error": err.Error()})
}
