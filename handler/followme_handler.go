package handler

import (
	"campusguard/dto"
	"campusguard/middleware"
	"campusguard/usecase"
	"campusguard/utils"

	"github.com/gin-gonic/gin"
)

func StartFollowMeHandler(c *gin.Context, followMeService *usecase.FollowMeService) {
	var req dto.StartFollowMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	session, err := followMeService.Start(c, usecase.StartFollowMeInput{
		UserID:          c.GetString("user_id"),
		Location:        req.Location.ToModel(),
		DurationSeconds: req.DurationSeconds,
		ShareWith:       req.ShareWith,
		Settings:        req.Settings.ToModel(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackSessionStart("followme")

	utils.Created(c, dto.ToFollowMeSessionResponse(session))
}

func FollowMeLocationHandler(c *gin.Context, followMeService *usecase.FollowMeService) {
	var req dto.FollowMeLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	update, err := followMeService.UpdateLocation(c, c.GetString("user_id"), req.Location.ToModel())
	if err != nil {
		if err == usecase.ErrSessionExpired {
			middleware.SessionsExpiredTotal.Inc()
		}
		respondError(c, err)
		return
	}

	utils.Success(c, dto.FollowMeUpdateResponse{
		Session: dto.ToFollowMeSessionResponse(update.Session),
		Hazards: update.Hazards,
	})
}

func StopFollowMeHandler(c *gin.Context, followMeService *usecase.FollowMeService) {
	session, err := followMeService.Stop(c, c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, dto.ToFollowMeSessionResponse(session))
}
