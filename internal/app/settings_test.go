package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohttpc/internal/app"
	"ohttpc/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := app.DefaultConfig()
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 1, cfg.Requests)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, domain.Plan{Requests: 1, Concurrency: 1}, cfg.Plan())
}

func TestSettings_AppliesOnlyPresentKeys(t *testing.T) {
	path := writeFile(t, "ohttpc.toml", `
url = "https://relay.example/"
concurrency = 8
timeout = "5s"
retry_base_delay = "50ms"
http3 = true
`)
	s, err := app.LoadSettings(path)
	require.NoError(t, err)

	cfg := app.DefaultConfig()
	cfg.KeyConfig = "abcd"
	require.NoError(t, s.Apply(&cfg))

	assert.Equal(t, "https://relay.example/", cfg.URL)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 1, cfg.Requests, "absent key keeps default")
	assert.Equal(t, "abcd", cfg.KeyConfig)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryBaseDelay)
	assert.True(t, cfg.HTTP3)
}

func TestSettings_ZeroValueIsApplied(t *testing.T) {
	path := writeFile(t, "ohttpc.toml", "requests = 0\n")
	s, err := app.LoadSettings(path)
	require.NoError(t, err)

	cfg := app.DefaultConfig()
	require.NoError(t, s.Apply(&cfg))
	assert.Equal(t, 0, cfg.Requests)
}

func TestSettings_Errors(t *testing.T) {
	cases := map[string]string{
		"syntax":      "concurrency = \n",
		"unknown key": "concurency = 2\n",
		"wrong type":  "requests = \"many\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := app.LoadSettings(writeFile(t, "ohttpc.toml", body))
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindConfig))
		})
	}

	_, err := app.LoadSettings(filepath.Join(t.TempDir(), "absent.toml"))
	assert.True(t, domain.IsKind(err, domain.KindConfig))
}

func TestSettings_BadDuration(t *testing.T) {
	s, err := app.LoadSettings(writeFile(t, "ohttpc.toml", "timeout = \"soon\"\n"))
	require.NoError(t, err)

	cfg := app.DefaultConfig()
	err = s.Apply(&cfg)
	assert.True(t, domain.IsKind(err, domain.KindConfig))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OHTTPC_CONCURRENCY", "16")
	t.Setenv("OHTTPC_TIMEOUT", "2s")
	t.Setenv("OHTTPC_LOG_LEVEL", "debug")

	cfg := app.DefaultConfig()
	require.NoError(t, app.ApplyEnv(&cfg, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, 16, cfg.Concurrency)
	assert.Equal(t, 1, cfg.Requests)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnv_DotEnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set, even empty.
	for _, k := range []string{"OHTTPC_REQUESTS", "OHTTPC_RETRIES"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	envFile := writeFile(t, ".env", "OHTTPC_REQUESTS=7\nOHTTPC_RETRIES=2\n")

	cfg := app.DefaultConfig()
	require.NoError(t, app.ApplyEnv(&cfg, envFile))

	assert.Equal(t, 7, cfg.Requests)
	assert.Equal(t, 2, cfg.Retries)
}

func TestApplyEnv_Malformed(t *testing.T) {
	t.Setenv("OHTTPC_REQUESTS", "lots")

	cfg := app.DefaultConfig()
	err := app.ApplyEnv(&cfg, filepath.Join(t.TempDir(), "missing.env"))
	assert.True(t, domain.IsKind(err, domain.KindConfig))
}
