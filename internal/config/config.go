// Package config loads application settings from a TOML file.
// Values from the file can be overridden by UM_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"usermanagement_server/pkg/constants"
)

// MainConfig holds the listener and run mode.
type MainConfig struct {
	AppName string `toml:"appName" env:"UM_APP_NAME"`
	Host    string `toml:"host" env:"UM_HOST"` // e.g. "0.0.0.0"
	Port    int    `toml:"port" env:"UM_PORT"` // e.g. 8000
	Mode    string `toml:"mode" env:"UM_MODE"` // "dev" or "release"
	// TlsRedirect sends plain HTTP requests to https://host:port.
	// Leave off when TLS is terminated by a proxy.
	TlsRedirect bool `toml:"tlsRedirect" env:"UM_TLS_REDIRECT"`
}

// StoreConfig selects the persistent store backend.
type StoreConfig struct {
	Driver     string `toml:"driver" env:"UM_STORE_DRIVER"`          // mysql | sqlite | memory
	SqlitePath string `toml:"sqlitePath" env:"UM_STORE_SQLITE_PATH"` // file path for the sqlite driver
}

// MysqlConfig is used when StoreConfig.Driver is "mysql".
type MysqlConfig struct {
	Host         string `toml:"host" env:"UM_MYSQL_HOST"`
	Port         int    `toml:"port" env:"UM_MYSQL_PORT"`
	User         string `toml:"user" env:"UM_MYSQL_USER"`
	Password     string `toml:"password" env:"UM_MYSQL_PASSWORD"`
	DatabaseName string `toml:"databaseName" env:"UM_MYSQL_DATABASE"`
}

// RedisConfig is used when CacheConfig.QueueBackend is "redis".
type RedisConfig struct {
	Host     string `toml:"host" env:"UM_REDIS_HOST"`
	Port     int    `toml:"port" env:"UM_REDIS_PORT"`
	Password string `toml:"password" env:"UM_REDIS_PASSWORD"`
	Db       int    `toml:"db" env:"UM_REDIS_DB"`
}

// CacheConfig tunes the in-memory caches and the notification queue.
type CacheConfig struct {
	OfflineThresholdSeconds int    `toml:"offlineThresholdSeconds" env:"UM_OFFLINE_THRESHOLD_SECONDS"`
	SweepIntervalSeconds    int    `toml:"sweepIntervalSeconds" env:"UM_SWEEP_INTERVAL_SECONDS"`
	QueueBackend            string `toml:"queueBackend" env:"UM_QUEUE_BACKEND"` // memory | redis
	MaxQueueLength          int    `toml:"maxQueueLength" env:"UM_MAX_QUEUE_LENGTH"`
}

// OfflineThreshold returns the inactivity window after which a user is swept.
func (c CacheConfig) OfflineThreshold() time.Duration {
	return time.Duration(c.OfflineThresholdSeconds) * time.Second
}

// SweepInterval returns the period of the background sweep.
func (c CacheConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// LogConfig configures zap and lumberjack rotation.
type LogConfig struct {
	LogPath    string `toml:"logPath" env:"UM_LOG_PATH"`
	FileName   string `toml:"fileName" env:"UM_LOG_FILE"`
	MaxSize    int    `toml:"maxSize"`                  // MB per file
	MaxBackups int    `toml:"maxBackups"`               // rotated files kept
	MaxAge     int    `toml:"maxAge"`                   // days
	Level      string `toml:"level" env:"UM_LOG_LEVEL"` // debug, info, warn, error
}

// KafkaConfig enables publishing of notifications to a topic.
type KafkaConfig struct {
	Enabled     bool          `toml:"enabled" env:"UM_KAFKA_ENABLED"`
	HostPort    string        `toml:"hostPort" env:"UM_KAFKA_HOST_PORT"` // e.g. "localhost:9092"
	NotifyTopic string        `toml:"notifyTopic" env:"UM_KAFKA_NOTIFY_TOPIC"`
	Timeout     time.Duration `toml:"timeout"` // write timeout in seconds
}

// Config aggregates every section.
type Config struct {
	MainConfig  `toml:"mainConfig"`
	StoreConfig `toml:"storeConfig"`
	MysqlConfig `toml:"mysqlConfig"`
	RedisConfig `toml:"redisConfig"`
	CacheConfig `toml:"cacheConfig"`
	LogConfig   `toml:"logConfig"`
	KafkaConfig `toml:"kafkaConfig"`
}

// config is the lazily loaded process-wide instance.
var config *Config

// searchPaths are tried in order when no explicit path is given.
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// Default returns a configuration that runs entirely in memory.
func Default() *Config {
	return &Config{
		MainConfig:  MainConfig{AppName: "usermanagement_server", Host: "0.0.0.0", Port: 8000, Mode: "dev"},
		StoreConfig: StoreConfig{Driver: "memory", SqlitePath: "data/usermanagement.db"},
		MysqlConfig: MysqlConfig{Host: "127.0.0.1", Port: 3306},
		RedisConfig: RedisConfig{Host: "127.0.0.1", Port: 6379},
		CacheConfig: CacheConfig{
			OfflineThresholdSeconds: constants.OFFLINE_THRESHOLD_SECOND,
			SweepIntervalSeconds:    constants.SWEEP_INTERVAL_SECOND,
			QueueBackend:            "memory",
			MaxQueueLength:          constants.MAX_QUEUE_LENGTH,
		},
		LogConfig:   LogConfig{LogPath: "logs", FileName: "usermanagement.log", MaxSize: 10, MaxBackups: 5, MaxAge: 30, Level: "info"},
		KafkaConfig: KafkaConfig{HostPort: "localhost:9092", NotifyTopic: "user_notifications", Timeout: 1},
	}
}

// Load reads path (or the search paths when path is empty) on top of Default,
// then applies environment overrides.
func Load(path string) (*Config, error) {
	conf := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, conf); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else {
		for _, p := range searchPaths {
			if _, err := toml.DecodeFile(p, conf); err == nil {
				break
			}
		}
	}
	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreConfig.Driver {
	case "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreConfig.Driver)
	}
	switch c.CacheConfig.QueueBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown queue backend %q", c.CacheConfig.QueueBackend)
	}
	if c.CacheConfig.OfflineThresholdSeconds <= 0 || c.CacheConfig.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("cache intervals must be positive")
	}
	if c.CacheConfig.MaxQueueLength <= 0 {
		return fmt.Errorf("maxQueueLength must be positive")
	}
	return nil
}

// SetConfig installs conf as the process-wide instance.
func SetConfig(conf *Config) {
	config = conf
}

// GetConfig returns the process-wide instance, loading it on first use.
func GetConfig() *Config {
	if config == nil {
		conf, err := Load("")
		if err != nil {
			conf = Default()
		}
		config = conf
	}
	return config
}
