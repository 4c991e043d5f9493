package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Guides   GuidesConfig
	Plays    PlaysConfig
	Mapbox   MapboxConfig
	Log      LogConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	MediaDir     string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	GuidesCacheTTL    time.Duration
	TagsCacheTTL      time.Duration
	AvailableCacheTTL time.Duration
}

type GuidesConfig struct {
	SearchRadiusKm float64
	MaxResults     int
}

type PlaysConfig struct {
	RateInterval time.Duration
	RateBurst    int
	RateIdleTTL  time.Duration
}

type MapboxConfig struct {
	AccessToken    string
	BaseURL        string
	RequestTimeout int
	Limit          int
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	BatchSize     int
	MaxRetries    int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine in containers where everything comes from the environment.
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("API_HOST"),
			Port:         viper.GetInt("API_PORT"),
			Env:          viper.GetString("API_ENV"),
			MediaDir:     viper.GetString("MEDIA_DIR"),
			AllowOrigins: viper.GetString("CORS_ALLOW_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			GuidesCacheTTL:    time.Duration(viper.GetInt("GUIDES_CACHE_TTL")) * time.Second,
			TagsCacheTTL:      time.Duration(viper.GetInt("TAGS_CACHE_TTL")) * time.Second,
			AvailableCacheTTL: time.Duration(viper.GetInt("AVAILABLE_CACHE_TTL")) * time.Second,
		},
		Guides: GuidesConfig{
			SearchRadiusKm: viper.GetFloat64("GUIDES_SEARCH_RADIUS_KM"),
			MaxResults:     viper.GetInt("GUIDES_MAX_RESULTS"),
		},
		Plays: PlaysConfig{
			RateInterval: time.Duration(viper.GetInt("PLAY_RATE_INTERVAL")) * time.Second,
			RateBurst:    viper.GetInt("PLAY_RATE_BURST"),
			RateIdleTTL:  time.Duration(viper.GetInt("PLAY_RATE_IDLE_TTL")) * time.Second,
		},
		Mapbox: MapboxConfig{
			AccessToken:    viper.GetString("MAPBOX_ACCESS_TOKEN"),
			BaseURL:        viper.GetString("MAPBOX_BASE_URL"),
			RequestTimeout: viper.GetInt("MAPBOX_REQUEST_TIMEOUT"),
			Limit:          viper.GetInt("MAPBOX_LIMIT"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
			BatchSize:     viper.GetInt("WORKER_BATCH_SIZE"),
			MaxRetries:    viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.MediaDir == "" {
		cfg.Server.MediaDir = "./static"
	}
	if cfg.Server.AllowOrigins == "" {
		cfg.Server.AllowOrigins = "http://localhost:3000,http://localhost:5173"
	}
	if cfg.Cache.GuidesCacheTTL == 0 {
		cfg.Cache.GuidesCacheTTL = 60 * time.Second
	}
	if cfg.Cache.TagsCacheTTL == 0 {
		cfg.Cache.TagsCacheTTL = 10 * time.Minute
	}
	if cfg.Cache.AvailableCacheTTL == 0 {
		cfg.Cache.AvailableCacheTTL = 10 * time.Minute
	}
	if cfg.Guides.SearchRadiusKm == 0 {
		cfg.Guides.SearchRadiusKm = 50
	}
	if cfg.Guides.MaxResults == 0 {
		cfg.Guides.MaxResults = 200
	}
	if cfg.Plays.RateInterval == 0 {
		cfg.Plays.RateInterval = 10 * time.Second
	}
	if cfg.Plays.RateBurst == 0 {
		cfg.Plays.RateBurst = 3
	}
	if cfg.Plays.RateIdleTTL == 0 {
		cfg.Plays.RateIdleTTL = 10 * time.Minute
	}
	if cfg.Mapbox.BaseURL == "" {
		cfg.Mapbox.BaseURL = "https://api.mapbox.com"
	}
	if cfg.Mapbox.RequestTimeout == 0 {
		cfg.Mapbox.RequestTimeout = 10
	}
	if cfg.Mapbox.Limit == 0 {
		cfg.Mapbox.Limit = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "guide-play-workers"
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 50
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN renders the key/value connection string accepted by pgx
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
