package handler

import (
	"campusguard/dto"
	"campusguard/middleware"
	"campusguard/model"
	"campusguard/usecase"
	"campusguard/utils"

	"github.com/gin-gonic/gin"
)

func StartGuardianHandler(c *gin.Context, guardianService *usecase.GuardianService) {
	var req dto.StartGuardianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	session, err := guardianService.Start(c, usecase.StartGuardianInput{
		UserID:           c.GetString("user_id"),
		Destination:      req.Destination,
		DestinationPoint: model.NewGeoPoint(req.DestinationLat, req.DestinationLng),
		CurrentLocation:  req.CurrentLocation.ToModel(),
		DurationMinutes:  req.DurationMinutes,
		ContactIDs:       req.ContactIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackSessionStart("guardian")

	utils.Created(c, dto.ToGuardianSessionResponse(session))
}

func GuardianLocationHandler(c *gin.Context, guardianService *usecase.GuardianService) {
	var req dto.GuardianLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	session, err := guardianService.UpdateLocation(c, usecase.UpdateGuardianInput{
		SessionID: c.Param("id"),
		UserID:    c.GetString("user_id"),
		Location:  req.Location.ToModel(),
		Status:    model.CheckInStatus(req.Status),
		Message:   req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if n := len(session.Deviations); n > 0 {
		last := session.Deviations[n-1]
		utils.Success(c, gin.H{
			"session":        dto.ToGuardianSessionResponse(session),
			"last_deviation": last,
		})
		return
	}

	utils.Success(c, dto.ToGuardianSessionResponse(session))
}

func CompleteGuardianHandler(c *gin.Context, guardianService *usecase.GuardianService) {
	session, err := guardianService.Complete(c, c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, dto.ToGuardianSessionResponse(session))
}

func CancelGuardianHandler(c *gin.Context, guardianService *usecase.GuardianService) {
	session, err := guardianService.Cancel(c, c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, dto.ToGuardianSessionResponse(session))
}
