package config

import (
	"time"

	"campusguard/utils"
)

// EngineConfig holds tunables for alerting, escort tracking and
// location sharing. Every value is env-driven with a safe default.
type EngineConfig struct {
	SOSEnrichmentDelay   time.Duration
	SOSNearbyRadiusM     float64
	DeviationThresholdM  float64
	HazardRadiusM        float64
	FanoutTimeout        time.Duration
	FollowMeUpdateSecs   int
	FollowMeHistoryCap   int
	FollowMeSessionTTL   time.Duration
}

func LoadEngineConfig() EngineConfig {
	return EngineConfig{
		SOSEnrichmentDelay:  utils.GetEnvAsDuration("SOS_ENRICHMENT_DELAY", 2*time.Second),
		SOSNearbyRadiusM:    float64(utils.GetEnvAsInt("SOS_NEARBY_RADIUS_M", 500)),
		DeviationThresholdM: float64(utils.GetEnvAsInt("GUARDIAN_DEVIATION_THRESHOLD_M", 500)),
		HazardRadiusM:       float64(utils.GetEnvAsInt("FOLLOWME_HAZARD_RADIUS_M", 200)),
		FanoutTimeout:       utils.GetEnvAsDuration("NOTIFICATION_CHANNEL_TIMEOUT", 10*time.Second),
		FollowMeUpdateSecs:  utils.GetEnvAsInt("FOLLOWME_UPDATE_INTERVAL_SECONDS", 15),
		FollowMeHistoryCap:  utils.GetEnvAsInt("FOLLOWME_MAX_HISTORY_POINTS", 100),
		FollowMeSessionTTL:  utils.GetEnvAsDuration("FOLLOWME_SESSION_TTL", 4*time.Hour),
	}
}
