package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL for the cached "current subscription" view.
	EntitlementCacheTTL time.Duration

	WebhookSecret string

	Gateways GatewayConfig

	WorkspaceServiceURL string
}

// GatewayConfig holds per-gateway endpoints and token signing secrets.
type GatewayConfig struct {
	TokenTTL time.Duration

	DriveURL    string
	DriveSecret string

	VPNURL    string
	VPNSecret string

	ObjectStorageURL    string
	ObjectStorageSecret string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "entitle"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "entitle"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		EntitlementCacheTTL: getenvDuration("ENTITLEMENT_CACHE_TTL", 5*time.Minute),

		WebhookSecret: strings.TrimSpace(getenv("PAYMENT_WEBHOOK_SECRET", "")),

		Gateways: GatewayConfig{
			TokenTTL:            getenvDuration("GATEWAY_TOKEN_TTL", 5*time.Minute),
			DriveURL:            getenv("DRIVE_GATEWAY_URL", "http://localhost:7001"),
			DriveSecret:         strings.TrimSpace(getenv("DRIVE_GATEWAY_SECRET", "")),
			VPNURL:              getenv("VPN_GATEWAY_URL", "http://localhost:7002"),
			VPNSecret:           strings.TrimSpace(getenv("VPN_GATEWAY_SECRET", "")),
			ObjectStorageURL:    getenv("OBJECT_STORAGE_GATEWAY_URL", "http://localhost:7003"),
			ObjectStorageSecret: strings.TrimSpace(getenv("OBJECT_STORAGE_GATEWAY_SECRET", "")),
		},

		WorkspaceServiceURL: getenv("WORKSPACE_SERVICE_URL", "http://localhost:7004"),
	}

	return cfg
}

// Module provides the configuration to the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(LoadCatalog),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
