package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, defaultCORSOrigins, cfg.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "local", cfg.StorageBackend)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://app.example.com, ,https://admin.example.com ")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{SessionTTL: time.Hour, UploadDir: "uploads"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "SECRET_KEY")

	cfg.DBUser = "app"
	cfg.DBPassword = "secret"
	cfg.SecretKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.DBUser, cfg.DBPassword = "", ""
	cfg.MySQLDSN = "u:p@tcp(db:3306)/x"
	assert.NoError(t, cfg.Validate())

	cfg.StorageBackend = "s3"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET")

	cfg.S3Bucket = "docs"
	assert.NoError(t, cfg.Validate())

	cfg.StorageBackend = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Storage(t *testing.T) {
	cfg := &Config{
		StorageBackend: "s3",
		UploadDir:      "uploads",
		S3Bucket:       "docs",
		S3Prefix:       "tenant-a",
		S3Endpoint:     "http://minio:9000",
	}

	opts := cfg.Storage()

	assert.Equal(t, "s3", opts.Backend)
	assert.Equal(t, "uploads", opts.LocalDir)
	assert.Equal(t, "docs", opts.S3.Bucket)
	assert.Equal(t, "tenant-a", opts.S3.Prefix)
	assert.Equal(t, "http://minio:9000", opts.S3.Endpoint)
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "3307",
		DBUser:     "app",
		DBPassword: "secret",
		DBName:     "compliance",
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "app:secret@tcp(db.internal:3307)/compliance")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	cfg.MySQLDSN = "override"
	assert.Equal(t, "override", cfg.DSN())
}
