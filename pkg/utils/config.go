package utils

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Messaging MessagingConfig
	Payment   PaymentConfig
	JWT       JWTConfig
	Booking   BookingConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	Environment string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// MessagingConfig selects the notification driver: "amqp", "nats" or "log".
type MessagingConfig struct {
	Driver       string
	AMQPURL      string
	AMQPExchange string
	NATSURL      string
	NATSSubject  string
}

type PaymentConfig struct {
	OmisePublicKey string
	OmiseSecretKey string
	Currency       string
	SourceType     string
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

type BookingConfig struct {
	// monthly caps per subscription tier, 0 = unlimited
	PlanLimits          map[string]int
	HorizonDays         int
	WaitlistHold        time.Duration
	WaitlistSweepPeriod time.Duration
	NotifyTimeout       time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type TracingConfig struct {
	Endpoint string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "appointment-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("CACHE_TTL_SECONDS", 30)
	viper.SetDefault("NOTIFY_DRIVER", "log")
	viper.SetDefault("AMQP_EXCHANGE", "booking.events")
	viper.SetDefault("NATS_SUBJECT", "booking.events")
	viper.SetDefault("PAYMENT_CURRENCY", "gbp")
	viper.SetDefault("PAYMENT_SOURCE_TYPE", "promptpay")
	viper.SetDefault("JWT_ISSUER", "appointment-booking")
	viper.SetDefault("JWT_TTL_HOURS", 12)
	viper.SetDefault("PLAN_LIMIT_FREE", 50)
	viper.SetDefault("PLAN_LIMIT_STARTER", 300)
	viper.SetDefault("PLAN_LIMIT_PRO", 2000)
	viper.SetDefault("PLAN_LIMIT_BUSINESS", 0)
	viper.SetDefault("BOOKING_HORIZON_DAYS", 30)
	viper.SetDefault("WAITLIST_HOLD_HOURS", 4)
	viper.SetDefault("WAITLIST_SWEEP_SECONDS", 60)
	viper.SetDefault("NOTIFY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	// .env is optional when everything comes from the environment
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Port:        viper.GetString("PORT"),
			Debug:       viper.GetBool("DEBUG"),
			LogPath:     viper.GetString("LOG_PATH"),
			Environment: viper.GetString("ENVIRONMENT"),
			CORSOrigins: splitList(viper.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			URL:      viper.GetString("REDIS_URL"),
			CacheTTL: time.Duration(viper.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		},
		Messaging: MessagingConfig{
			Driver:       strings.ToLower(viper.GetString("NOTIFY_DRIVER")),
			AMQPURL:      viper.GetString("AMQP_URL"),
			AMQPExchange: viper.GetString("AMQP_EXCHANGE"),
			NATSURL:      viper.GetString("NATS_URL"),
			NATSSubject:  viper.GetString("NATS_SUBJECT"),
		},
		Payment: PaymentConfig{
			OmisePublicKey: viper.GetString("OMISE_PUBLIC_KEY"),
			OmiseSecretKey: viper.GetString("OMISE_SECRET_KEY"),
			Currency:       viper.GetString("PAYMENT_CURRENCY"),
			SourceType:     viper.GetString("PAYMENT_SOURCE_TYPE"),
		},
		JWT: JWTConfig{
			Secret:   viper.GetString("JWT_SECRET"),
			Issuer:   viper.GetString("JWT_ISSUER"),
			TokenTTL: time.Duration(viper.GetInt("JWT_TTL_HOURS")) * time.Hour,
		},
		Booking: BookingConfig{
			PlanLimits: map[string]int{
				"free":     viper.GetInt("PLAN_LIMIT_FREE"),
				"starter":  viper.GetInt("PLAN_LIMIT_STARTER"),
				"pro":      viper.GetInt("PLAN_LIMIT_PRO"),
				"business": viper.GetInt("PLAN_LIMIT_BUSINESS"),
			},
			HorizonDays:         viper.GetInt("BOOKING_HORIZON_DAYS"),
			WaitlistHold:        time.Duration(viper.GetInt("WAITLIST_HOLD_HOURS")) * time.Hour,
			WaitlistSweepPeriod: time.Duration(viper.GetInt("WAITLIST_SWEEP_SECONDS")) * time.Second,
			NotifyTimeout:       time.Duration(viper.GetInt("NOTIFY_TIMEOUT_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
		Tracing: TracingConfig{
			Endpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	return config, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
