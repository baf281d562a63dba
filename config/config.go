// Initializing common application configuration
package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	App       AppConfig       `mapstructure:"app"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	GeoIP     GeoIPConfig     `mapstructure:"geoip"`
}

type ServerConfig struct {
	AppVersion  string        `mapstructure:"app_version"`
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Mode        string        `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// QueueConfig selects and tunes the click-event queue. Backend is one
// of "redis", "amqp" or "none".
type QueueConfig struct {
	Backend     string        `mapstructure:"backend"`
	Name        string        `mapstructure:"name"`
	AmqpURL     string        `mapstructure:"amqp_url"`
	MaxRetries  int           `mapstructure:"max_retries"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	Concurrency int           `mapstructure:"concurrency"`
}

type AppConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	ShortCodeLength int           `mapstructure:"short_code_length"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

type RateLimitConfig struct {
	Redirect RateLimitRule `mapstructure:"redirect"`
	Shorten  RateLimitRule `mapstructure:"shorten"`
	Guest    RateLimitRule `mapstructure:"guest"`
}

type RateLimitRule struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxCount      int `mapstructure:"max_count"`
}

type GeoIPConfig struct {
	DBPath string `mapstructure:"db_path"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "shortlink_user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "shortlink")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("queue.backend", "redis")
	v.SetDefault("queue.name", "shortlink:clicks")
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.base_delay", 2*time.Second)
	v.SetDefault("queue.concurrency", 5)

	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("app.short_code_length", 8)
	v.SetDefault("app.cache_ttl", 24*time.Hour)

	v.SetDefault("rate_limit.redirect.window_seconds", 60)
	v.SetDefault("rate_limit.redirect.max_count", 120)
	v.SetDefault("rate_limit.shorten.window_seconds", 60)
	v.SetDefault("rate_limit.shorten.max_count", 20)
	v.SetDefault("rate_limit.guest.window_seconds", 3600)
	v.SetDefault("rate_limit.guest.max_count", 10)
}
