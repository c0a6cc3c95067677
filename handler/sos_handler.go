package handler

import (
	"fmt"

	"campusguard/dto"
	"campusguard/middleware"
	"campusguard/model"
	"campusguard/usecase"
	"campusguard/utils"

	"github.com/gin-gonic/gin"
	ua "github.com/mileusna/useragent"
)

// TriggerSOSHandler creates an alert and returns immediately. The route sits
// behind optional auth: a token supplies the user id when present, otherwise
// the body must carry one. An emergency trigger should never bounce on an
// expired session.
func TriggerSOSHandler(c *gin.Context, sosService *usecase.SOSService) {
	var req dto.TriggerSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		userID = req.UserID
	}

	input := usecase.TriggerSOSInput{
		UserID:     userID,
		Message:    req.Message,
		Severity:   model.AlertSeverity(req.Severity),
		Source:     model.TriggerSource(req.Source),
		DeviceInfo: deviceInfo(c),
	}
	if req.Location != nil {
		loc := req.Location.ToModel()
		input.Location = &loc
	}

	alert, err := sosService.TriggerSOS(c, input)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackSOSAlert(string(alert.Severity), string(alert.TriggerSource))

	utils.Created(c, dto.ToSOSAlertResponse(alert))
}

func ResolveSOSHandler(c *gin.Context, sosService *usecase.SOSService) {
	alertID := c.Param("id")
	resolverID := c.GetString("user_id")

	var req dto.ResolveSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	alert, err := sosService.ResolveSOS(c, alertID, resolverID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, dto.ToSOSAlertResponse(alert))
}

func GetSOSAlertHandler(c *gin.Context, sosService *usecase.SOSService) {
	alert, err := sosService.GetAlert(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, dto.ToSOSAlertResponse(alert))
}

func ListActiveSOSAlertsHandler(c *gin.Context, sosService *usecase.SOSService) {
	alerts, err := sosService.ActiveAlerts(c)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"alerts": dto.ToSOSAlertResponses(alerts),
		"count":  len(alerts),
	})
}

// deviceInfo condenses the caller's user agent into the short descriptor
// stored on the alert for responders.
func deviceInfo(c *gin.Context) string {
	parsed := ua.Parse(c.Request.UserAgent())
	if parsed.Name == "" {
		return ""
	}
	return fmt.Sprintf("%s %s on %s %s", parsed.Name, parsed.Version, parsed.OS, parsed.OSVersion)
}
