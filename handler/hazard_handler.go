package handler

import (
	"strconv"
	"time"

	"campusguard/dto"
	"campusguard/model"
	"campusguard/repository"
	"campusguard/utils"

	"github.com/gin-gonic/gin"
)

// Hazard zones are staff-maintained; these handlers sit behind the security
// route group.

func CreateHazardHandler(c *gin.Context, hazardRepo *repository.HazardRepo) {
	var req dto.CreateHazardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	now := time.Now()
	hazard := &model.HazardZone{
		HazardID:     utils.GenerateID(),
		Name:         req.Name,
		Description:  req.Description,
		Center:       model.NewGeoPoint(req.Latitude, req.Longitude),
		RadiusMeters: req.RadiusMeters,
		RiskLevel:    model.RiskLevel(req.RiskLevel),
		Active:       true,
		ReportedBy:   c.GetString("user_id"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := hazardRepo.CreateHazard(c, hazard); err != nil {
		utils.InternalError(c, "Failed to create hazard zone")
		return
	}

	utils.Created(c, hazard)
}

func DeactivateHazardHandler(c *gin.Context, hazardRepo *repository.HazardRepo) {
	if err := hazardRepo.DeactivateHazard(c, c.Param("id")); err != nil {
		utils.InternalError(c, "Failed to deactivate hazard zone")
		return
	}

	utils.Success(c, gin.H{"message": "Hazard zone deactivated"})
}

func NearbyHazardsHandler(c *gin.Context, hazardRepo *repository.HazardRepo) {
	lat, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("longitude"), 64)
	if latErr != nil || lngErr != nil {
		utils.BadRequest(c, "latitude and longitude query parameters are required")
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_meters", "500"), 64)
	if err != nil || radius <= 0 {
		utils.BadRequest(c, "radius_meters must be a positive number")
		return
	}

	hazards, err := hazardRepo.FindNearby(c, model.NewGeoPoint(lat, lng), radius)
	if err != nil {
		utils.InternalError(c, "Hazard query failed")
		return
	}

	utils.Success(c, gin.H{
		"hazards": hazards,
		"count":   len(hazards),
	})
}
