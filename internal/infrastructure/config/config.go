package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "bizcard/internal/shared/config"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Email        sharedConfig.EmailConfig        `mapstructure:"email"`
	Auth         sharedConfig.AuthConfig         `mapstructure:"auth"`
	Gateway      sharedConfig.GatewayConfig      `mapstructure:"gateway"`
	Billing      sharedConfig.BillingConfig      `mapstructure:"billing"`
	Confirmation sharedConfig.ConfirmationConfig `mapstructure:"confirmation"`
	Sweeper      sharedConfig.SweeperConfig      `mapstructure:"sweeper"`
	Artifact     sharedConfig.ArtifactConfig     `mapstructure:"artifact"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (or configPath), then BIZCARD_* environment
// variables. A .env file in the working directory is loaded first if present;
// variables already set in the process environment win over it.
func Load(env, configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("BIZCARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timezone", "Asia/Seoul")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "bizcard_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "noreply@bizcard.local")
	v.SetDefault("email.from_name", "Bizcard")
	v.SetDefault("email.ops_address", "")

	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.access_exp_minutes", 60)
	v.SetDefault("auth.jwt.issuer", "bizcard")
	v.SetDefault("auth.policies", []map[string]string{
		{"role": "operator", "resource": "payments", "action": "force_status"},
		{"role": "operator", "resource": "payments", "action": "read_audit"},
	})

	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("gateway.webhook_tolerance", "5m")
	v.SetDefault("gateway.webhook_max_bytes", 65536)
	v.SetDefault("gateway.webhook_deadline", "8s")

	v.SetDefault("billing.currency", "krw")
	v.SetDefault("billing.new_subscriber_fee", 30000)
	v.SetDefault("billing.existing_member_fee", 30000)
	v.SetDefault("billing.tax_basis_points", 1000)
	v.SetDefault("billing.public_card_url", "http://localhost:8080/cards/%d")

	v.SetDefault("confirmation.status_cache_ttl", "2s")
	v.SetDefault("confirmation.requests_per_minute", 60)

	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.interval", "5m")
	v.SetDefault("sweeper.min_age", "10m")
	v.SetDefault("sweeper.batch_size", 50)

	v.SetDefault("artifact.region", "ap-northeast-2")
}
