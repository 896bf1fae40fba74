package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
	Market   MarketConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	ServiceKey   string
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	QueryTimeout    time.Duration
	ConnectRetries  uint64
	ConnectInterval time.Duration
}

// RedisConfig holds Redis specific configuration for calendar caching
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// KafkaConfig holds Kafka specific configuration for operational events
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// MarketConfig holds the supported symbol sets and series conventions
type MarketConfig struct {
	IndexSymbols   []string
	OptionRoots    []string
	FuturesSymbols []string
	SessionOpen    string
	SessionClose   string
	PointValue     float64
	InitialCapital float64
	PeriodsPerYear float64
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Read from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8083")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.queryTimeout", "30s")
	v.SetDefault("database.connectRetries", 3)
	v.SetDefault("database.connectInterval", "2s")

	// Redis defaults (calendar caching, disabled unless configured)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.cacheTTL", "15m")

	// Kafka defaults (operational events, disabled unless configured)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "market-data-events")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Market defaults
	v.SetDefault("market.indexSymbols", []string{"SPX"})
	v.SetDefault("market.optionRoots", []string{"SPXW"})
	v.SetDefault("market.futuresSymbols", []string{"ES", "NQ"})
	v.SetDefault("market.sessionOpen", "09:30")
	v.SetDefault("market.sessionClose", "15:59")
	v.SetDefault("market.pointValue", 20.0)
	v.SetDefault("market.initialCapital", 100000.0)
	v.SetDefault("market.periodsPerYear", 252.0)
}
