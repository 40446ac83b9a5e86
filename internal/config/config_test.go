package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "bookclub.db", cfg.DBPath)
	assert.Equal(t, DefaultAppURL, cfg.AppURL)
	assert.Equal(t, DefaultEmailFrom, cfg.EmailFrom)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, 50*time.Millisecond, cfg.SlowQuery)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowRequest)
	assert.Len(t, cfg.SessionSecret, 32)
	assert.Len(t, cfg.CSRFKey, 32)
	assert.True(t, cfg.GeneratedSecrets)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_ProductionRequiresSecrets(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"BOOKCLUB_ENV": "production"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKCLUB_SESSION_SECRET")

	_, err = FromEnv(envMap(map[string]string{
		"BOOKCLUB_ENV":            "production",
		"BOOKCLUB_SESSION_SECRET": strings.Repeat("s", 32),
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKCLUB_CSRF_KEY")

	cfg, err := FromEnv(envMap(map[string]string{
		"BOOKCLUB_ENV":            "production",
		"BOOKCLUB_SESSION_SECRET": strings.Repeat("s", 32),
		"BOOKCLUB_CSRF_KEY":       strings.Repeat("ab", 32),
	}))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.GeneratedSecrets)
}

func TestFromEnv_RejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"short secret":   {"BOOKCLUB_SESSION_SECRET": "short"},
		"bad csrf hex":   {"BOOKCLUB_CSRF_KEY": "zz"},
		"zero rate":      {"BOOKCLUB_RATE_LIMIT": "0"},
		"text slow ms":   {"BOOKCLUB_SLOW_QUERY_MS": "fast"},
		"unknown env":    {"BOOKCLUB_ENV": "staging"},
		"negative slowr": {"BOOKCLUB_SLOW_REQUEST_MS": "-5"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}
