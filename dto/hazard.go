package dto

type CreateHazardRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description,omitempty"`
	Latitude     float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude    float64 `json:"longitude" binding:"min=-180,max=180"`
	RadiusMeters float64 `json:"radius_meters" binding:"required,min=1,max=5000"`
	RiskLevel    string  `json:"risk_level" binding:"required,oneof=low medium high"`
}
