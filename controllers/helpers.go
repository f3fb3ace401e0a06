package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/taqueria-app/middlewares"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/services"
	"github.com/yeremiapane/taqueria-app/utils"
)

var errNoUser = errors.New("user id not found in context")

// actorFromContext reads the identity AuthMiddleware stored on the request.
func actorFromContext(c *gin.Context) (services.Actor, error) {
	raw, exists := c.Get(middlewares.ContextUserID)
	if !exists {
		return services.Actor{}, errNoUser
	}
	userID, ok := raw.(uint)
	if !ok || userID == 0 {
		return services.Actor{}, errNoUser
	}
	return services.Actor{
		UserID:   userID,
		Username: c.GetString(middlewares.ContextUsername),
		Role:     models.Role(c.GetString(middlewares.ContextRole)),
	}, nil
}

// requestContext carries the client IP down to the audit log.
func requestContext(c *gin.Context) context.Context {
	return services.WithClientIP(c.Request.Context(), c.ClientIP())
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrNotLinked),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrUnknownEntity):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrProtectedEntity):
		return http.StatusForbidden
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrEntityNotFound),
		errors.Is(err, services.ErrKitchenNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrEntityInUse):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		utils.ErrorLogger.WithField("path", c.FullPath()).Errorf("request failed: %v", err)
		utils.RespondError(c, status, errors.New("internal server error"))
		return
	}
	utils.RespondError(c, status, err)
}
