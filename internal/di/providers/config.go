// Package providers contains dependency injection providers for the verse
// clock server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/bibleclock/bibleclock-server/internal/config"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/validation"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Verse Clock Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"display_mode", cfg.Display.Mode,
		"translation", cfg.Display.Translation,
	)

	return log, nil
}

// ProvideValidator provides the data-file validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
