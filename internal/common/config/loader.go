// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration with the following precedence (lowest to highest):
// defaults < config file < .env file < environment variables.
func Load() (*Config, error) {
	// Load .env file first so its values are visible to viper's AutomaticEnv.
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/agreement-workers")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: run on defaults + env.
	}

	v.SetEnvPrefix("AW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvOverrides(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "agreement-workers")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("camunda.broker_address", "localhost:26500")
	v.SetDefault("camunda.max_jobs_active", 32)
	v.SetDefault("camunda.timeout", 30000)
	v.SetDefault("camunda.request_timeout", 10000)

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "agreement_workers")
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.max_connections", 20)
	v.SetDefault("database.postgres.max_idle", 5)
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("database.elasticsearch.url", "http://localhost:9200")

	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("marketplace.timeout", 15000)
	v.SetDefault("marketplace.upload_timeout", 60000)
	v.SetDefault("marketplace.snapshot_ttl", 60)
	v.SetDefault("marketplace.max_upload_bytes", 10*1024*1024)

	v.SetDefault("notifications.email.enabled", true)
	v.SetDefault("notifications.sms.enabled", false)
	v.SetDefault("notifications.aws.region", "eu-west-1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("registry.path", "activities.json")

	for _, task := range []string{
		"resolve-signing-state",
		"submit-agency-fees",
		"sign-agreement",
		"prepare-agreement-document",
		"record-agreement-audit",
		"index-booked-contract",
		"send-signing-notification",
	} {
		v.SetDefault(fmt.Sprintf("workers.%s.enabled", task), true)
		v.SetDefault(fmt.Sprintf("workers.%s.max_jobs_active", task), 8)
		v.SetDefault(fmt.Sprintf("workers.%s.timeout", task), 30000)
		v.SetDefault(fmt.Sprintf("workers.%s.max_retries", task), 3)
	}
}

// bindEnvOverrides maps the flat environment variable names used in
// deployment manifests onto config keys. AutomaticEnv only covers keys
// already known to viper, so secrets get explicit bindings.
func bindEnvOverrides(v *viper.Viper) {
	pairs := map[string]string{
		"camunda.broker_address":     "ZEEBE_ADDRESS",
		"database.postgres.host":     "POSTGRES_HOST",
		"database.postgres.port":     "POSTGRES_PORT",
		"database.postgres.database": "POSTGRES_DB",
		"database.postgres.user":     "POSTGRES_USER",
		"database.postgres.password": "POSTGRES_PASSWORD",
		"database.redis.address":     "REDIS_ADDRESS",
		"database.redis.password":    "REDIS_PASSWORD",
		"database.elasticsearch.url": "ELASTICSEARCH_URL",
		"auth.keycloak.url":          "KEYCLOAK_URL",
		"auth.keycloak.realm":        "KEYCLOAK_REALM",
		"auth.keycloak.client_id":    "KEYCLOAK_CLIENT_ID",
		"auth.keycloak.client_secret": "KEYCLOAK_CLIENT_SECRET",
		"marketplace.base_url":        "MARKETPLACE_BASE_URL",
		"notifications.email.from_email": "NOTIFICATION_FROM_EMAIL",
		"notifications.aws.region":       "AWS_REGION",
		"logging.level":                  "LOG_LEVEL",
	}
	for key, env := range pairs {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if cfg.Marketplace.BaseURL == "" {
		return fmt.Errorf("marketplace.base_url is required")
	}
	if cfg.Auth.Keycloak.URL != "" && cfg.Auth.Keycloak.ClientID == "" {
		return fmt.Errorf("auth.keycloak.client_id is required when keycloak is configured")
	}
	return nil
}
