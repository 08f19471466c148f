package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	MaxUploadBytes  int64
	ShutdownTimeout time.Duration

	HTTP      HTTPConfig
	Media     MediaConfig
	Uploads   UploadConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Providers ProvidersConfig
	Audit     AuditConfig
	Session   SessionConfig
}

// HTTPConfig bounds how long a connection may hold the server. Write must
// outlast the slowest collaborator call made inside a request.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// MediaConfig locates the prompt video catalogue.
type MediaConfig struct {
	Dir     string
	BaseURL string
}

// UploadConfig locates stored captures and documents.
type UploadConfig struct {
	Dir string
}

// RedisConfig configures the session store. An empty URL keeps sessions in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures verdict and audit persistence. An empty URL keeps
// them in memory.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxIdle  time.Duration
}

// ProvidersConfig locates the face and extraction collaborators.
type ProvidersConfig struct {
	FaceURL           string
	FaceTimeout       time.Duration
	ExtractionURL     string
	ExtractionTimeout time.Duration
	FailureThreshold  int
	CoolDown          time.Duration
}

type AuditConfig struct {
	BufferSize int
}

type SessionConfig struct {
	TTL        time.Duration
	CookieName string
}

const (
	DefaultMaxUploadBytes = 16 << 20
	DefaultCookieName     = "saathi_session"
)

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory, or the one named by SAATHI_ENV_FILE,
// is loaded first; variables already set in the environment win.
func FromEnv() (Server, error) {
	if err := loadEnvFile(); err != nil {
		return Server{}, err
	}

	var errs []error
	cfg := Server{
		Addr:            env("SAATHI_ADDR", ":8080"),
		Environment:     env("SAATHI_ENV", "development"),
		LogLevel:        env("LOG_LEVEL", "info"),
		MaxUploadBytes:  int64(intEnv("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes, &errs)),
		ShutdownTimeout: durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		HTTP: HTTPConfig{
			ReadHeaderTimeout: durationEnv("HTTP_READ_HEADER_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:       durationEnv("HTTP_READ_TIMEOUT", 60*time.Second, &errs),
			WriteTimeout:      durationEnv("HTTP_WRITE_TIMEOUT", 90*time.Second, &errs),
			IdleTimeout:       durationEnv("HTTP_IDLE_TIMEOUT", 120*time.Second, &errs),
		},
		Media: MediaConfig{
			Dir:     env("MEDIA_DIR", "static/videos"),
			BaseURL: env("MEDIA_BASE_URL", "/static/videos"),
		},
		Uploads: UploadConfig{
			Dir: env("UPLOAD_DIR", "uploads"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second, &errs),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second, &errs),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: intEnv("DB_MAX_OPEN_CONNS", 10, &errs),
			MaxIdleConns: intEnv("DB_MAX_IDLE_CONNS", 5, &errs),
			ConnMaxIdle:  durationEnv("DB_CONN_MAX_IDLE", 5*time.Minute, &errs),
		},
		Providers: ProvidersConfig{
			FaceURL:           env("FACE_SERVICE_URL", "http://localhost:8081"),
			FaceTimeout:       durationEnv("FACE_TIMEOUT", 10*time.Second, &errs),
			ExtractionURL:     env("EXTRACTION_SERVICE_URL", "http://localhost:8082"),
			ExtractionTimeout: durationEnv("EXTRACTION_TIMEOUT", 30*time.Second, &errs),
			FailureThreshold:  intEnv("PROVIDER_FAILURE_THRESHOLD", 5, &errs),
			CoolDown:          durationEnv("PROVIDER_COOL_DOWN", 30*time.Second, &errs),
		},
		Audit: AuditConfig{
			BufferSize: intEnv("AUDIT_BUFFER_SIZE", 256, &errs),
		},
		Session: SessionConfig{
			TTL:        durationEnv("SESSION_TTL", 24*time.Hour, &errs),
			CookieName: env("SESSION_COOKIE_NAME", DefaultCookieName),
		},
	}
	if err := errors.Join(errs...); err != nil {
		return Server{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether logs should be JSON and dev conveniences off.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

func loadEnvFile() error {
	path := os.Getenv("SAATHI_ENV_FILE")
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
