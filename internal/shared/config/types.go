package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN renders the connection string for the configured driver.
func (d *DatabaseConfig) GetDSN() string {
	if strings.EqualFold(d.Driver, "postgres") {
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	OpsAddress   string `mapstructure:"ops_address"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
	Issuer           string `mapstructure:"issuer"`
}

// PolicyRule grants an operator role an action on a resource.
type PolicyRule struct {
	Role     string `mapstructure:"role"`
	Resource string `mapstructure:"resource"`
	Action   string `mapstructure:"action"`
}

type AuthConfig struct {
	JWT      JWTConfig    `mapstructure:"jwt"`
	Policies []PolicyRule `mapstructure:"policies"`
}

// GatewayConfig configures the card payment gateway.
type GatewayConfig struct {
	SecretKey         string        `mapstructure:"secret_key"`
	WebhookSecret     string        `mapstructure:"webhook_secret"`
	SubscriptionPrice string        `mapstructure:"subscription_price"`
	Timeout           time.Duration `mapstructure:"timeout"`
	WebhookTolerance  time.Duration `mapstructure:"webhook_tolerance"`
	WebhookMaxBytes   int64         `mapstructure:"webhook_max_bytes"`
	WebhookDeadline   time.Duration `mapstructure:"webhook_deadline"`
}

// BillingConfig holds the server-side price list. Amounts are minor units.
type BillingConfig struct {
	Currency          string `mapstructure:"currency"`
	NewSubscriberFee  int64  `mapstructure:"new_subscriber_fee"`
	ExistingMemberFee int64  `mapstructure:"existing_member_fee"`
	TaxBasisPoints    int64  `mapstructure:"tax_basis_points"`
	PublicCardURL     string `mapstructure:"public_card_url"`
}

// ConfirmationConfig tunes the client confirmation endpoint.
type ConfirmationConfig struct {
	StatusCacheTTL    time.Duration `mapstructure:"status_cache_ttl"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// SweeperConfig tunes the stale pending payment sweeper.
type SweeperConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	MinAge    time.Duration `mapstructure:"min_age"`
	BatchSize int           `mapstructure:"batch_size"`
}

// ArtifactConfig locates the object store that receives issued QR artifacts.
type ArtifactConfig struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
}
