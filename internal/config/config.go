package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"DATABASE_HOST"`
	Port     string `mapstructure:"DATABASE_PORT"`
	Name     string `mapstructure:"DATABASE_NAME"`
	User     string `mapstructure:"DATABASE_USER"`
	Password string `mapstructure:"DATABASE_PASSWORD"`
	SSLMode  string `mapstructure:"DATABASE_SSLMODE"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	SnapshotSpec string `mapstructure:"SCHEDULER_SNAPSHOT_SPEC"`
	Timezone     string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	CompanyName         string `mapstructure:"COMPANY_NAME"`
	CurrencySymbol      string `mapstructure:"CURRENCY_SYMBOL"`
	DefaultCycleDays    int    `mapstructure:"DEFAULT_CYCLE_DAYS"`
	DefaultInterestRate string `mapstructure:"DEFAULT_INTEREST_RATE"`
}

type CacheConfig struct {
	DashboardTTL string `mapstructure:"DASHBOARD_CACHE_TTL"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// .env is optional; real env vars win
	_ = godotenv.Load()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_NAME", "jewellery_loans")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("COMPANY_NAME", "ABC")
	viper.SetDefault("CURRENCY_SYMBOL", "₹")
	viper.SetDefault("DEFAULT_CYCLE_DAYS", 30)
	viper.SetDefault("DEFAULT_INTEREST_RATE", "2.0")
	viper.SetDefault("SCHEDULER_SNAPSHOT_SPEC", "0 0 0 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	// Read from environment variables
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config.Server); err != nil {
		return nil, fmt.Errorf("unable to decode server config: %w", err)
	}
	if err := viper.Unmarshal(&config.Database); err != nil {
		return nil, fmt.Errorf("unable to decode database config: %w", err)
	}
	if err := viper.Unmarshal(&config.Redis); err != nil {
		return nil, fmt.Errorf("unable to decode redis config: %w", err)
	}
	if err := viper.Unmarshal(&config.Scheduler); err != nil {
		return nil, fmt.Errorf("unable to decode scheduler config: %w", err)
	}
	if err := viper.Unmarshal(&config.Logging); err != nil {
		return nil, fmt.Errorf("unable to decode logging config: %w", err)
	}
	if err := viper.Unmarshal(&config.Business); err != nil {
		return nil, fmt.Errorf("unable to decode business config: %w", err)
	}
	if err := viper.Unmarshal(&config.Cache); err != nil {
		return nil, fmt.Errorf("unable to decode cache config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}

	if c.Business.DefaultCycleDays <= 0 {
		return fmt.Errorf("DEFAULT_CYCLE_DAYS must be greater than 0")
	}

	if _, err := decimal.NewFromString(c.Business.DefaultInterestRate); err != nil {
		return fmt.Errorf("DEFAULT_INTEREST_RATE must be a valid decimal: %w", err)
	}

	if _, err := time.ParseDuration(c.Cache.DashboardTTL); err != nil {
		return fmt.Errorf("DASHBOARD_CACHE_TTL must be a valid duration: %w", err)
	}

	return nil
}

// DSN builds the postgres connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDefaultInterestRate returns the default interest rate as decimal
func (c *Config) GetDefaultInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.DefaultInterestRate)
	return rate
}

// GetDashboardCacheTTL returns the dashboard cache TTL as duration
func (c *Config) GetDashboardCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Cache.DashboardTTL)
	return ttl
}
