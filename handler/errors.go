package handler

import (
	"errors"

	"campusguard/middleware"
	"campusguard/usecase"
	"campusguard/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps usecase sentinel errors onto HTTP responses so every
// handler reports the same status for the same failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		middleware.TrackError("validation")
		utils.BadRequest(c, err.Error())
	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrAlertNotFound),
		errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrNoActiveSession):
		utils.NotFound(c, err.Error())
	case errors.Is(err, usecase.ErrAlreadyResolved),
		errors.Is(err, usecase.ErrSessionAlreadyActive):
		utils.Conflict(c, err.Error())
	case errors.Is(err, usecase.ErrSessionExpired):
		utils.Conflict(c, err.Error())
	default:
		middleware.TrackError("internal")
		utils.InternalError(c, "Internal server error")
	}
}
