package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings are the process-level knobs for the web service and CLI, read from
// the environment.
type Settings struct {
	Addr        string
	UploadDir   string
	DownloadDir string

	// MaxUploadBytes caps request bodies on upload.
	MaxUploadBytes int64

	SessionSecret string
	SessionTTL    time.Duration

	// Users maps login email to password.
	Users map[string]string

	// RetainFiles is how many files of each kind the sweeper keeps.
	RetainFiles int

	LogLevel string

	// MetricsBackend is "none", "pushgateway" or "datadog".
	MetricsBackend string
	PushgatewayURL string
	DatadogAddr    string
}

// LoadSettings reads Settings from the environment after merging the given
// .env files (missing files are ignored; real environment variables win).
func LoadSettings(envFiles ...string) (*Settings, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	users, err := parseUsers(getEnv("VALIDATOR_USERS", ""))
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Addr:           getEnv("ADDR", ":8080"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		DownloadDir:    getEnv("DOWNLOAD_DIR", "downloads"),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 500)) << 20,
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		SessionTTL:     time.Duration(getEnvAsInt("SESSION_TTL_MIN", 60)) * time.Minute,
		Users:          users,
		RetainFiles:    getEnvAsInt("RETAIN_FILES", 16),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MetricsBackend: strings.ToLower(getEnv("METRICS_BACKEND", "none")),
		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
		DatadogAddr:    getEnv("DATADOG_ADDR", "127.0.0.1:8125"),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate ensures the settings are usable.
func (s *Settings) Validate() error {
	if s.Addr == "" {
		return errors.New("ADDR must not be empty")
	}
	if s.UploadDir == "" || s.DownloadDir == "" {
		return errors.New("UPLOAD_DIR and DOWNLOAD_DIR must not be empty")
	}
	if s.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if s.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_MIN must be positive")
	}
	if s.RetainFiles < 1 {
		return errors.New("RETAIN_FILES must be at least 1")
	}
	switch s.MetricsBackend {
	case "", "none", "datadog":
	case "pushgateway":
		if s.PushgatewayURL == "" {
			return errors.New("PUSHGATEWAY_URL is required when METRICS_BACKEND=pushgateway")
		}
	default:
		return fmt.Errorf("unknown METRICS_BACKEND %q", s.MetricsBackend)
	}
	return nil
}

// parseUsers reads "email:password,email:password".
func parseUsers(raw string) (map[string]string, error) {
	users := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		email, pass, ok := strings.Cut(pair, ":")
		email = strings.TrimSpace(email)
		if !ok || email == "" || pass == "" {
			return nil, fmt.Errorf("VALIDATOR_USERS: malformed entry near %q", email)
		}
		users[strings.ToLower(email)] = pass
	}
	return users, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
