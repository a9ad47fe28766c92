package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port      string
	BaseURL   string
	ServiceID string
	// Remote backend config
	ConfigURL          string
	ConfigFetchTimeout time.Duration
	StoreDriver        string // postgres | memory
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSSLMode          string
	DBNotifyChannel    string
	// Session
	SessionSecret string
	SessionTTL    time.Duration
	AdminPassword string
	// Pages
	ReportTimezone string
	QRSeconds      int
	// Capture
	FFmpegBin string
	V4L2Sysfs string
	// Logging
	LogLevel  string
	LogFormat string
	// Config server
	ConfigPort     string
	AllowOrigins   []string
	RateLimitRPS   float64
	RateLimitBurst int
	Backend        BackendValues
}

// BackendValues are served by cmd/configserver at /backend-config.
type BackendValues struct {
	APIKey            string
	AuthDomain        string
	ProjectID         string
	StorageBucket     string
	MessagingSenderID string
	AppID             string
	MeasurementID     string
	DatabaseURL       string
}

func Load() *Config {
	return &Config{
		Port:               getenv("PORT", "8080"),
		BaseURL:            strings.TrimRight(getenv("BASE_URL", ""), "/"),
		ServiceID:          getenv("SERVICE_NAME", "room-console"),
		ConfigURL:          getenv("CONFIG_URL", "http://localhost:8081/backend-config"),
		ConfigFetchTimeout: time.Duration(getint("CONFIG_FETCH_TIMEOUT_MS", 7000)) * time.Millisecond,
		StoreDriver:        strings.ToLower(getenv("STORE_DRIVER", "postgres")),
		DBHost:             getenv("DB_HOST", "localhost"),
		DBPort:             getenv("DB_PORT", "5432"),
		DBUser:             getenv("DB_USER", "postgres"),
		DBPassword:         getenv("DB_PASSWORD", "postgres"),
		DBName:             getenv("DB_NAME", "room_console"),
		DBSSLMode:          getenv("DB_SSLMODE", "disable"),
		DBNotifyChannel:    getenv("DB_NOTIFY_CHANNEL", "rooms_changed"),
		SessionSecret:      getenv("SESSION_SECRET", "supersecret_change_me"),
		SessionTTL:         time.Duration(getint("SESSION_TTL_HOURS", 12)) * time.Hour,
		AdminPassword:      getenv("ADMIN_PASSWORD", ""),
		ReportTimezone:     getenv("REPORT_TIMEZONE", "Asia/Bangkok"),
		QRSeconds:          getint("QR_SECONDS", 60),
		FFmpegBin:          getenv("FFMPEG_BIN", "ffmpeg"),
		V4L2Sysfs:          getenv("V4L2_SYSFS", "/sys/class/video4linux"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFormat:          getenv("LOG_FORMAT", "json"),
		ConfigPort:         getenv("CONFIG_PORT", "8081"),
		AllowOrigins:       getlist("ALLOW_ORIGINS", []string{"http://127.0.0.1:5500", "http://localhost:5500"}),
		RateLimitRPS:       getfloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getint("RATE_LIMIT_BURST", 10),
		Backend: BackendValues{
			APIKey:            os.Getenv("BACKEND_API_KEY"),
			AuthDomain:        os.Getenv("BACKEND_AUTH_DOMAIN"),
			ProjectID:         os.Getenv("BACKEND_PROJECT_ID"),
			StorageBucket:     os.Getenv("BACKEND_STORAGE_BUCKET"),
			MessagingSenderID: os.Getenv("BACKEND_MESSAGING_SENDER_ID"),
			AppID:             os.Getenv("BACKEND_APP_ID"),
			MeasurementID:     os.Getenv("BACKEND_MEASUREMENT_ID"),
			DatabaseURL:       os.Getenv("BACKEND_DATABASE_URL"),
		},
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getint(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getfloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

// getlist reads a comma-separated value, e.g. "http://127.0.0.1:5500,http://localhost:3000".
func getlist(key string, fallback []string) []string {
	var out []string
	for _, o := range strings.Split(os.Getenv(key), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
