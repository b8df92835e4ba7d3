// Package config loads server configuration from flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	AI        AIConfig
	Scheduler SchedulerConfig
	Search    SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates everything the server keeps on disk.
type DataConfig struct {
	BasePath string
}

// DocumentPath is the JSON content document.
func (d DataConfig) DocumentPath() string { return filepath.Join(d.BasePath, "data.json") }

// MediaPath is the directory holding generated images.
func (d DataConfig) MediaPath() string { return filepath.Join(d.BasePath, "media") }

// SearchPath is the bleve index directory.
func (d DataConfig) SearchPath() string { return filepath.Join(d.BasePath, "search") }

// KeyPath is the PASETO key file.
func (d DataConfig) KeyPath() string { return filepath.Join(d.BasePath, "auth.key") }

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// AuthConfig holds the single admin account and token settings.
type AuthConfig struct {
	AdminEmail string
	// Argon2id PHC string, see `cmsctl hash-password`.
	AdminPasswordHash string
	// Plain password, hashed at startup. Development convenience only.
	AdminPassword       string
	AccessTokenDuration time.Duration
	LoginRatePerSecond  float64
	LoginBurst          int
}

// AIConfig configures the Gemini text, image and speech models.
type AIConfig struct {
	GeminiAPIKey     string
	TextModel        string
	ImageModel       string
	SpeechModel      string
	SpeechVoice      string
	FallbackImageURL string
	Timeout          time.Duration
}

// Enabled reports whether content generation can be offered.
func (c AIConfig) Enabled() bool { return c.GeminiAPIKey != "" }

// SchedulerConfig configures the scheduled-publishing job.
type SchedulerConfig struct {
	Enabled bool
	Spec    string
}

// SearchConfig configures the full-text index.
type SearchConfig struct {
	Enabled bool
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("ryha", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory holding data.json, media and the search index")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 120s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins")

	adminEmail := fs.String("admin-email", "", "Admin login email")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 12h)")

	textModel := fs.String("text-model", "", "Gemini model for post text")
	imageModel := fs.String("image-model", "", "Gemini model for images")
	speechModel := fs.String("speech-model", "", "Gemini model for read-aloud audio")

	schedulerEnabled := fs.String("scheduler", "", "Publish due scheduled posts automatically (default: true)")
	schedulerSpec := fs.String("scheduler-spec", "", "Cron spec for the publishing job (default: @every 1m)")
	searchEnabled := fs.String("search", "", "Enable the full-text index (default: true)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Silently ignore a missing .env file.
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
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			AdminEmail:        strings.ToLower(getConfigValue(*adminEmail, "ADMIN_EMAIL", "")),
			AdminPasswordHash: getConfigValue("", "ADMIN_PASSWORD_HASH", ""),
			AdminPassword:     getConfigValue("", "ADMIN_PASSWORD", ""),
			LoginBurst:        getIntConfigValue("", "LOGIN_RATE_BURST", 5),
		},
		AI: AIConfig{
			GeminiAPIKey:     getConfigValue("", "GEMINI_API_KEY", ""),
			TextModel:        getConfigValue(*textModel, "GEMINI_TEXT_MODEL", "gemini-2.0-flash"),
			ImageModel:       getConfigValue(*imageModel, "GEMINI_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation"),
			SpeechModel:      getConfigValue(*speechModel, "GEMINI_SPEECH_MODEL", "gemini-2.5-flash-preview-tts"),
			SpeechVoice:      getConfigValue("", "GEMINI_SPEECH_VOICE", "Algenib"),
			FallbackImageURL: getConfigValue("", "FALLBACK_IMAGE_URL", "https://placehold.co/600x400.png"),
		},
		Scheduler: SchedulerConfig{
			Enabled: getBoolConfigValue(*schedulerEnabled, "SCHEDULER_ENABLED", true),
			Spec:    getConfigValue(*schedulerSpec, "SCHEDULER_SPEC", "@every 1m"),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(*searchEnabled, "SEARCH_ENABLED", true),
		},
	}

	rate, err := strconv.ParseFloat(getConfigValue("", "LOGIN_RATE_PER_SECOND", "0.2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid login rate: %w", err)
	}
	cfg.Auth.LoginRatePerSecond = rate

	durations := []struct {
		flagValue, envKey, def string
		target                 *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		// Generation requests hold the connection while the models respond.
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "120s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "12h", &cfg.Auth.AccessTokenDuration},
		{"", "AI_TIMEOUT", "90s", &cfg.AI.Timeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.target = parsed
	}

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
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
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

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Auth.AdminEmail != "" && c.Auth.AdminPasswordHash == "" && c.Auth.AdminPassword == "" {
		return errors.New("ADMIN_EMAIL is set but neither ADMIN_PASSWORD_HASH nor ADMIN_PASSWORD is")
	}
	if c.App.Environment == "production" && c.Auth.AdminPassword != "" {
		return errors.New("ADMIN_PASSWORD is not allowed in production, use ADMIN_PASSWORD_HASH")
	}

	if c.Scheduler.Enabled && c.Scheduler.Spec == "" {
		return errors.New("scheduler spec cannot be empty when the scheduler is enabled")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
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

// expandDataPath defaults the data directory to ~/Ryha/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "Ryha", "data"))
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
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from a .env file. Variables already set
// in the environment win.
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

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
