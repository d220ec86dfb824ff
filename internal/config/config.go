package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TASKMANIA"

type Config struct {
	Server    ServerConfig `mapstructure:"server"`
	Log       LogConfig    `mapstructure:"log"`
	Mongo     MongoConfig  `mapstructure:"mongo"`
	MySQL     MySQLConfig  `mapstructure:"mysql"`
	Redis     RedisConfig  `mapstructure:"redis"`
	JWT       JWTConfig    `mapstructure:"jwt"`
	SMTP      SMTPConfig   `mapstructure:"smtp"`
	Kafka     KafkaConfig  `mapstructure:"kafka"`
	OAuth     OAuthConfig  `mapstructure:"oauth"`
	Outbox    WorkerConfig `mapstructure:"outbox"`
	Reconcile WorkerConfig `mapstructure:"reconcile"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type MySQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	RedirectURL        string `mapstructure:"redirect_url"`
	SuccessURL         string `mapstructure:"success_url"`
}

type WorkerConfig struct {
	BatchSize int           `mapstructure:"batch_size"`
	Interval  time.Duration `mapstructure:"interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.database", "taskmania")
	v.SetDefault("mongo.timeout", 5*time.Second)

	v.SetDefault("mysql.dsn", "user:password@tcp(127.0.0.1:3306)/taskmania?charset=utf8mb4&parseTime=True")
	v.SetDefault("mysql.max_open_conns", 50)
	v.SetDefault("mysql.max_idle_conns", 10)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.access_secret", "secret-key")
	v.SetDefault("jwt.refresh_secret", "refresh-key")
	v.SetDefault("jwt.access_ttl", 30*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 24*time.Hour)

	v.SetDefault("smtp.host", "smtp.example.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "NoReply <no-reply@example.com>")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("kafka.topic", "taskmania.events")

	v.SetDefault("oauth.redirect_url", "http://localhost:8080/api/auth/oauth2/callback")
	v.SetDefault("oauth.success_url", "http://localhost:5173/oauth-success")

	v.SetDefault("outbox.batch_size", 200)
	v.SetDefault("outbox.interval", time.Second)
	v.SetDefault("reconcile.batch_size", 500)
	v.SetDefault("reconcile.interval", 5*time.Minute)
}

// Load reads config.yaml from path (or ., ./config when path is empty) and
// applies TASKMANIA_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return nil, errors.New("jwt secrets must be set")
	}
	return &cfg, nil
}
