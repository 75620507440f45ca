package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/farellandr/coursehub/internal/models"
)

type Config struct {
	Port   string `mapstructure:"PORT"`
	AppEnv string `mapstructure:"APP_ENV"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	AccessSecret  string        `mapstructure:"ACCESS_SECRET"`
	RefreshSecret string        `mapstructure:"REFRESH_SECRET"`
	AccessTTL     time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL    time.Duration `mapstructure:"REFRESH_TTL"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`

	StripeSecretKey        string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeSuccessURL       string        `mapstructure:"STRIPE_SUCCESS_URL"`
	PaymentProviderTimeout time.Duration `mapstructure:"PAYMENT_PROVIDER_TIMEOUT"`

	CurrencyAPIURL     string        `mapstructure:"CURRENCY_API_URL"`
	LocalCurrency      string        `mapstructure:"LOCAL_CURRENCY"`
	SettlementCurrency string        `mapstructure:"SETTLEMENT_CURRENCY"`
	CurrencyCacheTTL   time.Duration `mapstructure:"CURRENCY_CACHE_TTL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	NotifyWorkers int `mapstructure:"NOTIFY_WORKERS"`
	NotifyQueue   int `mapstructure:"NOTIFY_QUEUE"`

	InactivityThreshold time.Duration `mapstructure:"INACTIVITY_THRESHOLD"`
	MaintenanceSchedule string        `mapstructure:"MAINTENANCE_SCHEDULE"`

	LoginRateLimit int    `mapstructure:"LOGIN_RATE_LIMIT"`
	UploadDir      string `mapstructure:"UPLOAD_DIR"`
}

var defaults = map[string]any{
	"PORT":                     "8080",
	"APP_ENV":                  "development",
	"DB_PORT":                  "5432",
	"ACCESS_TTL":               "15m",
	"REFRESH_TTL":              "168h",
	"PAYMENT_PROVIDER_TIMEOUT": "15s",
	"CURRENCY_API_URL":         "https://open.er-api.com/v6",
	"LOCAL_CURRENCY":           "RUB",
	"SETTLEMENT_CURRENCY":      "USD",
	"CURRENCY_CACHE_TTL":       "1h",
	"SMTP_PORT":                587,
	"NOTIFY_WORKERS":           2,
	"NOTIFY_QUEUE":             64,
	"INACTIVITY_THRESHOLD":     "720h",
	"MAINTENANCE_SCHEDULE":     "0 0 * * *",
	"LOGIN_RATE_LIMIT":         5,
	"UPLOAD_DIR":               "./uploads",
}

var keys = []string{
	"PORT", "APP_ENV",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"ACCESS_SECRET", "REFRESH_SECRET", "ACCESS_TTL", "REFRESH_TTL",
	"REDIS_ADDR",
	"STRIPE_SECRET_KEY", "STRIPE_SUCCESS_URL", "PAYMENT_PROVIDER_TIMEOUT",
	"CURRENCY_API_URL", "LOCAL_CURRENCY", "SETTLEMENT_CURRENCY", "CURRENCY_CACHE_TTL",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
	"NOTIFY_WORKERS", "NOTIFY_QUEUE",
	"INACTIVITY_THRESHOLD", "MAINTENANCE_SCHEDULE",
	"LOGIN_RATE_LIMIT", "UPLOAD_DIR",
}

// LoadConfig reads path/app.env when present and lets environment
// variables override it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("ACCESS_SECRET and REFRESH_SECRET must be set")
	}
	if c.NotifyWorkers < 1 {
		return errors.New("NOTIFY_WORKERS must be at least 1")
	}
	if c.NotifyQueue < 1 {
		return errors.New("NOTIFY_QUEUE must be at least 1")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Course{}, &models.Lesson{}, &models.Subscription{}, &models.Payment{})
}

// InitRedis connects to REDIS_ADDR. It returns a nil client when no
// address is configured.
func InitRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
