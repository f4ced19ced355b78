package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo = "mongo"
	StoreMySQL = "mysql"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Which NotificationRepository backend to use: mongo or mysql
	Store StoreConfig `json:"store"`

	MongoDB MongoDBConfig `json:"mongodb"`

	// MySQL backend
	Database DatabaseConfig `json:"database"`

	// Unread count cache (optional)
	Redis RedisConfig `json:"redis"`

	// Dispatcher transport (optional)
	Kafka KafkaConfig `json:"kafka"`

	Notification NotificationConfig `json:"notification"`

	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host         string `json:"host"`
	HTTPPort     string `json:"http_port"`
	GRPCPort     string `json:"grpc_port"`
	ReadTimeout  int    `json:"read_timeout"`  // Seconds
	WriteTimeout int    `json:"write_timeout"` // Seconds
	Environment  string `json:"environment"`   // development, staging, production
}

type StoreConfig struct {
	Driver string `json:"driver"`
}

// MongoDBConfig holds either a full URI (Atlas SRV strings) or the parts to build one.
type MongoDBConfig struct {
	URI            string `json:"uri"`
	Host           string `json:"host"`
	Port           string `json:"port"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Database       string `json:"database"`
	Collection     string `json:"collection"`
	ConnectTimeout int    `json:"connect_timeout"` // Seconds
}

// DatabaseConfig contains MySQL connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type RedisConfig struct {
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	UnreadTTL int    `json:"unread_ttl"` // Seconds
	Enabled   bool   `json:"enabled"`
}

type KafkaConfig struct {
	Brokers       []string `json:"brokers"`
	DispatchTopic string   `json:"dispatch_topic"`
	OutcomeTopic  string   `json:"outcome_topic"`
	GroupID       string   `json:"group_id"`
	Enabled       bool     `json:"enabled"`
}

// NotificationConfig contains notification system configuration
type NotificationConfig struct {
	Workers                int `json:"workers"`                  // Number of worker goroutines
	ChannelBufferSize      int `json:"channel_buffer_size"`      // Event channel buffer size
	ScheduledCheckInterval int `json:"scheduled_check_interval"` // Seconds, 0 disables the releaser
	ReleaseBatchSize       int `json:"release_batch_size"`
	ExpirySweepInterval    int `json:"expiry_sweep_interval"` // Seconds, 0 disables the sweeper
	DefaultUnreadLimit     int `json:"default_unread_limit"`
	PublishTimeout         int `json:"publish_timeout"` // Seconds
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, console
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			HTTPPort:     getEnv("HTTP_PORT", "8080"),
			GRPCPort:     getEnv("GRPC_PORT", "7004"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			Environment:  getEnv("APP_ENV", "development"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		},
		MongoDB: MongoDBConfig{
			URI:            getEnv("MONGO_URI", ""),
			Host:           getEnv("MONGO_HOST", "localhost"),
			Port:           getEnv("MONGO_PORT", "27017"),
			Username:       getEnv("MONGO_USERNAME", ""),
			Password:       getEnv("MONGO_PASSWORD", ""),
			Database:       getEnv("MONGO_DATABASE", "foodorder"),
			Collection:     getEnv("MONGO_NOTIFICATIONS_COLLECTION", "notifications"),
			ConnectTimeout: getEnvInt("MONGO_CONNECT_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:         getEnv("MYSQL_HOST", "localhost"),
			Port:         getEnv("MYSQL_PORT", "3306"),
			Username:     getEnv("MYSQL_USERNAME", "foodorder"),
			Password:     getEnv("MYSQL_PASSWORD", ""),
			DatabaseName: getEnv("MYSQL_DATABASE", "foodorder"),
			MaxOpenConns: getEnvInt("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("MYSQL_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			UnreadTTL: getEnvInt("REDIS_UNREAD_TTL", 30),
			Enabled:   getEnvBool("REDIS_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			DispatchTopic: getEnv("KAFKA_DISPATCH_TOPIC", "notifications.dispatch"),
			OutcomeTopic:  getEnv("KAFKA_OUTCOME_TOPIC", "notifications.delivery-outcomes"),
			GroupID:       getEnv("KAFKA_GROUP_ID", "notification-tracker"),
			Enabled:       getEnvBool("KAFKA_ENABLED", false),
		},
		Notification: NotificationConfig{
			Workers:                getEnvInt("NOTIF_WORKERS", 5),
			ChannelBufferSize:      getEnvInt("NOTIF_CHANNEL_BUFFER", 1000),
			ScheduledCheckInterval: getEnvInt("NOTIF_SCHEDULE_INTERVAL", 60),
			ReleaseBatchSize:       getEnvInt("NOTIF_RELEASE_BATCH", 200),
			ExpirySweepInterval:    getEnvInt("NOTIF_EXPIRY_SWEEP_INTERVAL", 300),
			DefaultUnreadLimit:     getEnvInt("NOTIF_DEFAULT_UNREAD_LIMIT", 20),
			PublishTimeout:         getEnvInt("NOTIF_PUBLISH_TIMEOUT", 5),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.URI != "" {
		return cfg.MongoDB.URI
	}
	if cfg.MongoDB.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			cfg.MongoDB.Username,
			cfg.MongoDB.Password,
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
			cfg.MongoDB.Database,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (c NotificationConfig) ScheduledInterval() time.Duration {
	return time.Duration(c.ScheduledCheckInterval) * time.Second
}

func (c NotificationConfig) SweepInterval() time.Duration {
	return time.Duration(c.ExpirySweepInterval) * time.Second
}

func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.UnreadTTL) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
