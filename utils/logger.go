package utils

import (
	"os"

	"go.uber.org/zap"
)

// Logger is the process-wide structured logger.
var Logger *zap.Logger

func InitLogger() error {
	var err error
	if os.Getenv("GO_ENV") == "production" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	return nil
}

func init() {
	// Tests and early init paths get a usable logger even before
	// InitLogger runs.
	if Logger == nil {
		Logger = zap.NewNop()
	}
}
