package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"complianceadvisor/internal/storage"
)

var defaultCORSOrigins = []string{
	"http://localhost:5100",
	"http://127.0.0.1:5100",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	MySQLDSN   string
	ResetDB    bool

	SecretKey    string
	SessionTTL   time.Duration
	CookieSecure bool
	CORSOrigins  []string

	StorageBackend string
	UploadDir      string
	MaxUploadSize  string
	RulesPath      string

	S3Bucket   string
	S3Region   string
	S3Prefix   string
	S3Endpoint string
	S3KMSKeyID string

	RedisAddr string
	RedisDB   int
	RedisPass string

	LogLevel    string
	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "compliance"),
		MySQLDSN:       os.Getenv("MYSQL_DSN"),
		ResetDB:        getEnvBool("RESET_DB", false),
		SecretKey:      os.Getenv("SECRET_KEY"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		CORSOrigins:    getEnvList("CORS_ORIGINS", defaultCORSOrigins),
		StorageBackend: getEnv("STORAGE_BACKEND", storage.BackendLocal),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize:  getEnv("MAX_UPLOAD_SIZE", "10M"),
		RulesPath:      os.Getenv("RULES_PATH"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       os.Getenv("S3_REGION"),
		S3Prefix:       os.Getenv("S3_PREFIX"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3KMSKeyID:     os.Getenv("S3_KMS_KEY_ID"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
	}
}

// Validate reports missing settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.MySQLDSN == "" && (c.DBUser == "" || c.DBPassword == "") {
		errs = append(errs, errors.New("DB_USER and DB_PASSWORD are required when MYSQL_DSN is unset"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	switch c.StorageBackend {
	case "", storage.BackendLocal:
		if strings.TrimSpace(c.UploadDir) == "" {
			errs = append(errs, errors.New("UPLOAD_DIR must not be empty"))
		}
	case storage.BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND %q is not one of local, s3", c.StorageBackend))
	}
	return errors.Join(errs...)
}

// DSN returns the MySQL data source name, preferring MYSQL_DSN when set.
func (c *Config) DSN() string {
	if c.MySQLDSN != "" {
		return c.MySQLDSN
	}
	dsn := mysql.NewConfig()
	dsn.User = c.DBUser
	dsn.Passwd = c.DBPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	dsn.DBName = c.DBName
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

// Storage returns the file store settings.
func (c *Config) Storage() storage.Options {
	return storage.Options{
		Backend:  c.StorageBackend,
		LocalDir: c.UploadDir,
		S3: storage.S3Options{
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Prefix:   c.S3Prefix,
			KMSKeyID: c.S3KMSKeyID,
			Endpoint: c.S3Endpoint,
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
