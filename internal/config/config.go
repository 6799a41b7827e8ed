package config

import (
	"os"
	"strconv"
)

type FinanceServiceConfig struct {
	Port        string
	PostgresCfg PostgresConfig
	RabbitMQCfg RabbitMQConfig
	RedisCfg    RedisConfig
	MatchingCfg MatchingConfig
	BillingCfg  BillingConfig
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

// MatchingConfig holds the default three-way matching tolerances. Callers
// may override them per request.
type MatchingConfig struct {
	PriceTolerancePct    float64
	QuantityTolerancePct float64
	AmountTolerance      float64
	AutoApproveThreshold float64
}

// BillingConfig holds the collections defaults applied when a billing cycle
// does not specify its own values, plus the flat assessment rate used until
// a real pricing rule is plugged in.
type BillingConfig struct {
	DefaultGraceDays      int
	DefaultLateFeePercent float64
	FlatAssessmentAmount  float64
	AgingCacheTTLSeconds  int
	AutoRunIntervalHours  int
}

func New() *FinanceServiceConfig {
	return &FinanceServiceConfig{
		Port: getEnvOrDefault("PORT", "8086"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "finance_service"),
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
			DB:       0,
		},
		MatchingCfg: MatchingConfig{
			PriceTolerancePct:    getEnvFloatOrDefault("MATCH_PRICE_TOLERANCE_PCT", 5.0),
			QuantityTolerancePct: getEnvFloatOrDefault("MATCH_QTY_TOLERANCE_PCT", 5.0),
			AmountTolerance:      getEnvFloatOrDefault("MATCH_AMOUNT_TOLERANCE", 100.0),
			AutoApproveThreshold: getEnvFloatOrDefault("MATCH_AUTO_APPROVE_THRESHOLD", 1000.0),
		},
		BillingCfg: BillingConfig{
			DefaultGraceDays:      getEnvIntOrDefault("BILLING_GRACE_DAYS", 10),
			DefaultLateFeePercent: getEnvFloatOrDefault("BILLING_LATE_FEE_PCT", 5.0),
			FlatAssessmentAmount:  getEnvFloatOrDefault("BILLING_FLAT_ASSESSMENT", 250.0),
			AgingCacheTTLSeconds:  getEnvIntOrDefault("AGING_CACHE_TTL_SECONDS", 600),
			AutoRunIntervalHours:  getEnvIntOrDefault("BILLING_AUTO_RUN_INTERVAL_HOURS", 24),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
