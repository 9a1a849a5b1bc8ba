package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Log          LogConfig          `mapstructure:"log"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Leaderboard  LeaderboardConfig  `mapstructure:"leaderboard"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"` // debug | release | test
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	DBName        string `mapstructure:"dbname"`
	SSLMode       string `mapstructure:"sslmode"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	MaxOpenConns  int    `mapstructure:"max_open_conns"`
	MaxIdleConns  int    `mapstructure:"max_idle_conns"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: "single", "sentinel", "cluster". По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов (хост:порт) для всех режимов
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима 'single', если Addrs пуст
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: имя мастера (только для "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig содержит настройки проверки токенов внешнего сервиса авторизации
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Env      string `mapstructure:"env"`       // production | development
	SQLLevel string `mapstructure:"sql_level"` // silent | error | warn | info
}

// GamificationConfig содержит настройки движка опыта и сессий обучения
type GamificationConfig struct {
	Timezone              string `mapstructure:"timezone"`
	TxMaxRetries          int    `mapstructure:"tx_max_retries"`
	WriteTimeoutSec       int    `mapstructure:"write_timeout_sec"`
	DefaultStudyQuestions int    `mapstructure:"default_study_questions"`
	MaxStudyQuestions     int    `mapstructure:"max_study_questions"`
	EventsChannelPrefix   string `mapstructure:"events_channel_prefix"`
}

// LeaderboardConfig содержит настройки рейтингов
type LeaderboardConfig struct {
	AccuracyMinAttempts int           `mapstructure:"accuracy_min_attempts"`
	ExamMinAttempts     int           `mapstructure:"exam_min_attempts"`
	DefaultLimit        int           `mapstructure:"default_limit"`
	MaxLimit            int           `mapstructure:"max_limit"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	RefreshInterval     time.Duration `mapstructure:"refresh_interval"`
	CachePrefix         string        `mapstructure:"cache_prefix"`
	WarmExamTypes       []string      `mapstructure:"warm_exam_types"`
}

// RateLimitConfig содержит настройки ограничения частоты запросов на запись
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения (для golang-migrate)
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// Location возвращает часовой пояс, в котором считаются календарные дни серии
func (g *GamificationConfig) Location() (*time.Location, error) {
	if g.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(g.Timezone)
}

// WriteTimeout - таймаут пишущих операций, не зависящий от соединения клиента
func (g *GamificationConfig) WriteTimeout() time.Duration {
	return time.Duration(g.WriteTimeoutSec) * time.Second
}

// LoadDotEnv подгружает .env, если файл есть. Уже заданные переменные не перезаписываются.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.mode", "release")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("server.allowed_origins", []string{"*"})

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_dir", "migrations")
	vip.SetDefault("database.max_open_conns", 25)
	vip.SetDefault("database.max_idle_conns", 10)

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("log.env", "production")
	vip.SetDefault("log.sql_level", "warn")

	vip.SetDefault("gamification.timezone", "UTC")
	vip.SetDefault("gamification.tx_max_retries", 3)
	vip.SetDefault("gamification.write_timeout_sec", 10)
	vip.SetDefault("gamification.default_study_questions", 10)
	vip.SetDefault("gamification.max_study_questions", 100)
	vip.SetDefault("gamification.events_channel_prefix", "gamification:user:")

	vip.SetDefault("leaderboard.accuracy_min_attempts", 1)
	vip.SetDefault("leaderboard.exam_min_attempts", 1)
	vip.SetDefault("leaderboard.default_limit", 10)
	vip.SetDefault("leaderboard.max_limit", 100)
	vip.SetDefault("leaderboard.cache_ttl", 2*time.Minute)
	vip.SetDefault("leaderboard.refresh_interval", time.Minute)
	vip.SetDefault("leaderboard.cache_prefix", "lb:")

	vip.SetDefault("rate_limit.enabled", true)
	vip.SetDefault("rate_limit.requests", 30)
	vip.SetDefault("rate_limit.window", time.Minute)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Новый экземпляр Viper, без глобального состояния

	setDefaults(vip)

	// Переменные окружения привязываются явно
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_dir", "DATABASE_MIGRATIONS_DIR")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.issuer", "JWT_ISSUER")

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.mode", "GIN_MODE")

	vip.BindEnv("log.env", "LOG_ENV")
	vip.BindEnv("gamification.timezone", "GAMIFICATION_TIMEZONE")
	vip.BindEnv("leaderboard.accuracy_min_attempts", "LEADERBOARD_ACCURACY_MIN_ATTEMPTS")
	vip.BindEnv("leaderboard.exam_min_attempts", "LEADERBOARD_EXAM_MIN_ATTEMPTS")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Отсутствие файла не критично: есть env и умолчания
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required (check JWT_SECRET env var)")
	}
	if c.Server.Mode != "debug" && c.Database.Password == "" {
		return fmt.Errorf("database password is required outside debug mode (check DATABASE_PASSWORD env var)")
	}
	if _, err := c.Gamification.Location(); err != nil {
		return fmt.Errorf("invalid gamification timezone %q: %w", c.Gamification.Timezone, err)
	}
	if c.Leaderboard.MaxLimit < 1 || c.Leaderboard.DefaultLimit < 1 || c.Leaderboard.DefaultLimit > c.Leaderboard.MaxLimit {
		return fmt.Errorf("leaderboard limits are inconsistent: default=%d max=%d", c.Leaderboard.DefaultLimit, c.Leaderboard.MaxLimit)
	}
	if c.Leaderboard.AccuracyMinAttempts < 1 || c.Leaderboard.ExamMinAttempts < 1 {
		return fmt.Errorf("leaderboard min attempts must be at least 1")
	}
	return nil
}
