package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
app:
  env: "production"
  store: "memory"
log:
  level: "debug"
  format: "json"
db:
  driver: "postgres"
  host: "db.internal"
  port: "5432"
  user: "vibe"
  password: "secret"
  name: "vibes"
http:
  port: "9000"
  request_timeout: "3s"
auth:
  jwt_secret: "s3cr3t"
  session_ttl: "2h"
`

const brokenYAML = `
app: [unclosed
`

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	require.Equal(t, "development", cfg.App.ENV)
	require.Equal(t, StoreGorm, cfg.App.Store)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "127.0.0.1:50051", cfg.GRPC.Addr())
	require.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	require.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	require.True(t, cfg.IsDevelopment())
}

func TestNew_ComposesMySQLDSN(t *testing.T) {
	t.Setenv("DB_HOST", "mysql.local")
	t.Setenv("DB_NAME", "music")

	cfg := New()
	require.Equal(t, "root:root@tcp(mysql.local:3306)/music?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DB.DSN)
}

func TestNew_ExplicitDSNWins(t *testing.T) {
	t.Setenv("MYSQL_DSN", "u:p@tcp(h:1)/d")
	t.Setenv("DB_HOST", "ignored")

	cfg := New()
	require.Equal(t, "u:p@tcp(h:1)/d", cfg.DB.DSN)
}

func TestLoad_WithExplicitPath(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.App.ENV)
	require.Equal(t, StoreMemory, cfg.App.Store)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "9000", cfg.HTTP.Port)
	require.Equal(t, 3*time.Second, cfg.HTTP.RequestTimeout)
	require.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	require.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t,
		"host=db.internal port=5432 user=vibe password=secret dbname=vibes sslmode=disable TimeZone=UTC",
		cfg.DB.DSN,
	)
	require.False(t, cfg.IsDevelopment())
}

func TestLoad_BrokenYAML(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_EnvOverlaysFile(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)
	t.Setenv("HTTP_PORT", "18080")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "18080", cfg.HTTP.Port)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "from_env.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "production", cfg.App.ENV)
}

func TestLoad_LocalYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.App.Store)
}

func TestLoad_EnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("APP_STORE", "MEMORY")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "demo")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.App.Store)
	require.Equal(t, "demo.db", cfg.DB.DSN)
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
