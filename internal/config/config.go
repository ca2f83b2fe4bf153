package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type DeclarationServiceConfig struct {
	Port         string
	LogDir       string
	PostgresCfg  PostgresConfig
	RabbitMQCfg  RabbitMQConfig
	RedisCfg     RedisConfig
	MinioCfg     MinioConfig
	GeminiAPICfg GeminiAPIConfig
	WizardCfg    WizardConfig
}

type MinioConfig struct {
	MinioURL         string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioLocation    string
	MinioSecure      string
	MinioResourceURL string
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type GeminiAPIConfig struct {
	APIKeys   []string
	FlashName string
	ProName   string
}

// WizardConfig controls the declaration wizard sessions and the geo validation pipeline.
type WizardConfig struct {
	SessionTTL        time.Duration
	GeoMode           string
	GeometryDelay     time.Duration
	SatelliteDelay    time.Duration
	GeoWorkers        int
	GeoQueueSize      int
	ListCacheTTL      time.Duration
	MaxUploadSizeByte int64
}

func New() *DeclarationServiceConfig {
	return &DeclarationServiceConfig{
		Port:   getEnvOrDefault("PORT", "8085"),
		LogDir: getEnvOrDefault("LOG_DIR", "/eudr/log/declaration_service"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "declaration_service"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntEnvOrDefault("REDIS_DB", 0),
		},
		MinioCfg: MinioConfig{
			MinioURL:         getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey:   getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey:   getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:    getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:      getEnvOrDefault("MINIO_SECURE", "false"),
			MinioResourceURL: getEnvOrDefault("MINIO_RESOURCE_URL", "http://localhost:9407/"),
		},
		GeminiAPICfg: GeminiAPIConfig{
			APIKeys:   splitNonEmpty(getEnvOrDefault("GEMINI_KEYS", "")),
			FlashName: getEnvOrDefault("GEMINI_FLASH_MODEL", "gemini-2.5-flash"),
			ProName:   getEnvOrDefault("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		},
		WizardCfg: WizardConfig{
			SessionTTL:        getDurationEnvOrDefault("WIZARD_SESSION_TTL", 2*time.Hour),
			GeoMode:           getEnvOrDefault("GEO_VALIDATION_MODE", "random"),
			GeometryDelay:     getDurationEnvOrDefault("GEO_GEOMETRY_DELAY", 1500*time.Millisecond),
			SatelliteDelay:    getDurationEnvOrDefault("GEO_SATELLITE_DELAY", 2*time.Second),
			GeoWorkers:        getIntEnvOrDefault("GEO_WORKERS", 4),
			GeoQueueSize:      getIntEnvOrDefault("GEO_QUEUE_SIZE", 64),
			ListCacheTTL:      getDurationEnvOrDefault("DECLARATION_LIST_CACHE_TTL", 5*time.Minute),
			MaxUploadSizeByte: int64(getIntEnvOrDefault("MAX_UPLOAD_SIZE_BYTES", 20<<20)),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitNonEmpty(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
