// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Display DisplayConfig
	Sources SourcesConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk data configuration.
type DataConfig struct {
	// BasePath is the directory holding the structure index, translation
	// caches, calendar, summaries, and the badger database.
	BasePath string
}

// DisplayConfig holds verse display configuration.
type DisplayConfig struct {
	// Mode selects how verses are chosen: time, date, or random.
	Mode string
	// TimeFormat is "12" or "24"; it drives the hour→chapter mapping.
	TimeFormat string
	// Translation is the primary translation code (default: kjv).
	Translation string
	// Parallel enables a secondary translation alongside the primary.
	Parallel bool
	// SecondaryTranslation is used when Parallel is on (default: amp).
	SecondaryTranslation string
}

// SourcesConfig holds remote verse source configuration.
type SourcesConfig struct {
	// BibleAPIURL is the base URL of the free bible-api.com service.
	BibleAPIURL string
	// RequestTimeout bounds every remote fetch (default: 10s).
	RequestTimeout time.Duration
	// ESVAPIKey authenticates against api.esv.org. Optional.
	ESVAPIKey string
	// ScriptureAPIKey authenticates against scripture.api.bible. Optional.
	ScriptureAPIKey string
	// BibleGateway credentials for the authenticated API. Optional.
	BibleGatewayUsername string
	BibleGatewayPassword string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")

	displayMode := flag.String("display-mode", "", "Verse selection mode (time, date, random)")
	timeFormat := flag.String("time-format", "", "Clock format (12 or 24)")
	translation := flag.String("translation", "", "Primary translation code (default: kjv)")
	parallel := flag.String("parallel", "", "Enable parallel secondary translation (default: false)")
	secondary := flag.String("secondary-translation", "", "Secondary translation code (default: amp)")

	bibleAPIURL := flag.String("bible-api-url", "", "Base URL for bible-api.com")
	requestTimeout := flag.String("request-timeout", "", "Remote fetch timeout (default: 10s)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Display: DisplayConfig{
			Mode:                 getConfigValue(*displayMode, "DISPLAY_MODE", "time"),
			TimeFormat:           getConfigValue(*timeFormat, "TIME_FORMAT", "12"),
			Translation:          strings.ToLower(getConfigValue(*translation, "DEFAULT_TRANSLATION", "kjv")),
			Parallel:             getBoolConfigValue(*parallel, "PARALLEL_MODE", false),
			SecondaryTranslation: strings.ToLower(getConfigValue(*secondary, "SECONDARY_TRANSLATION", "amp")),
		},
		Sources: SourcesConfig{
			BibleAPIURL:          getConfigValue(*bibleAPIURL, "BIBLE_API_URL", "https://bible-api.com"),
			ESVAPIKey:            getConfigValue("", "ESV_API_KEY", ""),
			ScriptureAPIKey:      getConfigValue("", "SCRIPTURE_API_KEY", ""),
			BibleGatewayUsername: getConfigValue("", "BIBLEGATEWAY_USERNAME", ""),
			BibleGatewayPassword: getConfigValue("", "BIBLEGATEWAY_PASSWORD", ""),
		},
	}

	timeoutStr := getConfigValue(*requestTimeout, "REQUEST_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid request timeout %q: %w", timeoutStr, err)
	}
	cfg.Sources.RequestTimeout = timeout

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	validModes := map[string]bool{
		"time":   true,
		"date":   true,
		"random": true,
	}
	if !validModes[c.Display.Mode] {
		return fmt.Errorf("invalid display mode: %s (must be time, date, or random)", c.Display.Mode)
	}

	if c.Display.TimeFormat != "12" && c.Display.TimeFormat != "24" {
		return fmt.Errorf("invalid time format: %s (must be 12 or 24)", c.Display.TimeFormat)
	}

	if c.Display.Translation == "" {
		return errors.New("primary translation cannot be empty")
	}

	if c.Display.Parallel && c.Display.SecondaryTranslation == "" {
		return errors.New("secondary translation required when parallel mode is enabled")
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Sources.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}

	return nil
}

// TranslationsPath returns the directory holding per-translation cache files.
func (c *Config) TranslationsPath() string {
	return filepath.Join(c.Data.BasePath, "translations")
}

// StorePath returns the badger database directory.
func (c *Config) StorePath() string {
	return filepath.Join(c.Data.BasePath, "db")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "VerseClock", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
