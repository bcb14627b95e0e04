package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, 5*time.Minute, c.GetRefreshMargin())
	require.Equal(t, 15*time.Second, c.GetRequestTimeout())
	require.Equal(t, 2, c.GetMaxAttempts())
	require.Equal(t, time.Hour, c.GetSessionTTL())
	require.Equal(t, 24*time.Hour, c.GetSessionMaxLifetime())
}

func TestAllowedOrigins(t *testing.T) {
	c := New()

	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("http://localhost:3000"))
	require.False(t, origins.IsAllowedOrigin("https://evil.example.com"))
}

func TestLoadFile(t *testing.T) {
	t.Cleanup(func() { fileOverrides = FileOverrides{} })

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9090"
refresh_margin: 2m
max_attempts: 3
upstream_sandbox_url: "https://sandbox.test"
allowed_origins: "https://dash.test, https://dash2.test"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := NewFromFile(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 2*time.Minute, c.GetRefreshMargin())
	require.Equal(t, 3, c.GetMaxAttempts())
	require.Equal(t, "https://sandbox.test", c.GetSandboxBaseURL())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://dash.test"))
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://dash2.test"))
}

func TestLoadFile_Missing(t *testing.T) {
	require.Error(t, LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestLoadFile_BadDuration(t *testing.T) {
	t.Cleanup(func() { fileOverrides = FileOverrides{} })

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refresh_margin: soon\n"), 0o600))
	require.Error(t, LoadFile(path))
}
