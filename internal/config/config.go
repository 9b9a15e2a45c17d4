package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server        ServerConfig        `env:",prefix=SERVER_"`
	Postgres      PostgresConfig      `env:",prefix=POSTGRES_"`
	Redis         RedisConfig         `env:",prefix=REDIS_"`
	JWT           JWTConfig           `env:",prefix=JWT_"`
	Security      SecurityConfig      `env:",prefix="`
	CORS          CORSConfig          `env:",prefix=CORS_"`
	Scheduler     SchedulerConfig     `env:",prefix=SCHEDULER_"`
	Notifications NotificationsConfig `env:",prefix=PUSH_"`
	Storage       StorageConfig       `env:",prefix=S3_"`
	Upload        UploadConfig        `env:",prefix=UPLOAD_"`
	Env           string              `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=plantkeeper"`
	Password string `env:"PASSWORD,default=plantkeeper_password"`
	DBName   string `env:"DB,default=plantkeeper_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret             string   `env:"SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// SchedulerConfig drives the background job schedules. Cron specs use the
// standard five-field format.
type SchedulerConfig struct {
	WateringCron  string   `env:"WATERING_CRON,default=0 8 * * *"`
	CleanupCron   string   `env:"CLEANUP_CRON,default=0 3 * * 1"`
	Timezone      string   `env:"TIMEZONE,default=UTC"`
	DispatchDelay Duration `env:"DISPATCH_DELAY,default=100ms"`
	Concurrency   int      `env:"CONCURRENCY,default=5"`
}

type NotificationsConfig struct {
	ChannelID     string   `env:"CHANNEL_ID,default=watering-reminders"`
	StaleTokenAge Duration `env:"STALE_TOKEN_AGE,default=30d"`
}

type StorageConfig struct {
	Endpoint      string `env:"ENDPOINT,default=localhost:9000"`
	AccessKey     string `env:"ACCESS_KEY,default=plantkeeper"`
	SecretKey     string `env:"SECRET_KEY,default=plantkeeper_secret"`
	Bucket        string `env:"BUCKET,default=plant-images"`
	UseSSL        bool   `env:"USE_SSL,default=false"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL,default="`
}

type UploadConfig struct {
	MaxImageSize int64 `env:"MAX_IMAGE_SIZE,default=5242880"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection URL used by the migrator
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate JWT secret length
	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
