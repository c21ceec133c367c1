package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "routewave"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ROUTEWAVE_DB_DSN"
	EnvDBHost = "ROUTEWAVE_DB_HOST"
	EnvDBUser = "ROUTEWAVE_DB_USER"
	EnvDBName = "ROUTEWAVE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Realtime      RealtimeConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ROUTEWAVE_APP_ENV" required:"true"`
	Port         string `envconfig:"ROUTEWAVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ROUTEWAVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ROUTEWAVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ROUTEWAVE_DB_DSN"`
	Driver string `envconfig:"ROUTEWAVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ROUTEWAVE_DB_HOST"`
	LegacyPort     int    `envconfig:"ROUTEWAVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ROUTEWAVE_DB_USER"`
	LegacyPassword string `envconfig:"ROUTEWAVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ROUTEWAVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ROUTEWAVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ROUTEWAVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROUTEWAVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROUTEWAVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROUTEWAVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ROUTEWAVE_REDIS_URL" required:"true"`
	Password     string        `envconfig:"ROUTEWAVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROUTEWAVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROUTEWAVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROUTEWAVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROUTEWAVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROUTEWAVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROUTEWAVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ROUTEWAVE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ROUTEWAVE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ROUTEWAVE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ROUTEWAVE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ROUTEWAVE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ROUTEWAVE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ROUTEWAVE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ROUTEWAVE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ROUTEWAVE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ROUTEWAVE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ROUTEWAVE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ROUTEWAVE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ROUTEWAVE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ROUTEWAVE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ROUTEWAVE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ROUTEWAVE_AUTO_MIGRATE" default:"false"`
}

type RealtimeConfig struct {
	WriteTimeout   time.Duration `envconfig:"ROUTEWAVE_REALTIME_WRITE_TIMEOUT" default:"10s"`
	PongTimeout    time.Duration `envconfig:"ROUTEWAVE_REALTIME_PONG_TIMEOUT" default:"60s"`
	PingInterval   time.Duration `envconfig:"ROUTEWAVE_REALTIME_PING_INTERVAL" default:"50s"`
	SendBufferSize int           `envconfig:"ROUTEWAVE_REALTIME_SEND_BUFFER" default:"64"`
	MaxMessageSize int64         `envconfig:"ROUTEWAVE_REALTIME_MAX_MESSAGE_BYTES" default:"4096"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ROUTEWAVE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
