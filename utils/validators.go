package utils

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New()
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterCustomValidators(v)
	}
	RegisterCustomValidators(Validate)
}

func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("severity", ValidateSeverityRule)
	v.RegisterValidation("checkin_status", ValidateCheckInStatusRule)
}

func ValidateSeverityRule(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "low", "medium", "high", "critical":
		return true
	}
	return false
}

func ValidateCheckInStatusRule(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "on_time", "delayed", "off_route":
		return true
	}
	return false
}
