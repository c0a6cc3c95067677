package handler

import (
	"time"

	"campusguard/usecase"
	"campusguard/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type StatsHandler struct {
	sosService  *usecase.SOSService
	mongoClient *mongo.Client
	redisClient *redis.Client
	startedAt   time.Time
}

func NewStatsHandler(sosService *usecase.SOSService, mongoClient *mongo.Client, redisClient *redis.Client) *StatsHandler {
	return &StatsHandler{
		sosService:  sosService,
		mongoClient: mongoClient,
		redisClient: redisClient,
		startedAt:   time.Now(),
	}
}

// Health reports dependency reachability plus host load. Degraded
// dependencies are reported but do not flip the status: the SOS path is
// designed to keep accepting triggers while redis is down.
func (h *StatsHandler) Health(c *gin.Context) {
	checks := gin.H{}
	status := "ok"

	pingCtx := c.Request.Context()
	if err := h.mongoClient.Ping(pingCtx, nil); err != nil {
		checks["mongo"] = "unreachable"
		status = "degraded"
	} else {
		checks["mongo"] = "ok"
	}

	if err := h.redisClient.Ping(pingCtx).Err(); err != nil {
		checks["redis"] = "unreachable"
		if status == "ok" {
			status = "degraded"
		}
	} else {
		checks["redis"] = "ok"
	}

	utils.Success(c, gin.H{
		"status":         status,
		"checks":         checks,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"cpu_percent":    utils.GetCPUUsage(),
		"memory_percent": utils.GetMemoryUsage(),
	})
}

// SecurityStats gives staff dashboards a quick operational snapshot.
func (h *StatsHandler) SecurityStats(c *gin.Context) {
	alerts, err := h.sosService.ActiveAlerts(c)
	if err != nil {
		utils.InternalError(c, "Failed to load active alerts")
		return
	}

	bySeverity := map[string]int{}
	for _, alert := range alerts {
		bySeverity[string(alert.Severity)]++
	}

	utils.Success(c, gin.H{
		"active_alerts": len(alerts),
		"by_severity":   bySeverity,
	})
}
