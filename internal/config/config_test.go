package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Analytics.QueryTimeout)
	assert.Equal(t, 1000, cfg.Reports.PageLimit)
	assert.Equal(t, 50, cfg.Reports.TrafficLimit)
	assert.Equal(t, 366, cfg.Reports.SeriesLimit)
	assert.Equal(t, "28daysAgo", cfg.Reports.StartDate)
	assert.Equal(t, "yesterday", cfg.Reports.EndDate)
	assert.Equal(t, uint32(5), cfg.Analytics.Breaker.MinRequests)
	assert.False(t, cfg.Audit.Enabled)

	table, err := cfg.TokenTable()
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
auth:
  tenants:
    - token: Tok-A
      properties: ["1001", "1002"]
  shared_secret: legacy
analytics:
  query_timeout: 5s
reports:
  page_limit: 250
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Analytics.QueryTimeout)
	assert.Equal(t, 250, cfg.Reports.PageLimit)
	assert.Equal(t, "legacy", cfg.Auth.SharedSecret)

	table, err := cfg.TokenTable()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"Tok-A": {"1001", "1002"}}, table)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GA4DIAG_AUTH_SHARED_SECRET", "from-env")
	t.Setenv("GA4DIAG_AUTH_TOKENS_JSON", `{"tok-b": ["2000"]}`)
	t.Setenv("GA4DIAG_REPORTS_TRAFFIC_LIMIT", "75")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.SharedSecret)
	assert.Equal(t, 75, cfg.Reports.TrafficLimit)
	table, err := cfg.TokenTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"2000"}, table["tok-b"])
}

func TestLoad_BadTokensJSON(t *testing.T) {
	t.Setenv("GA4DIAG_AUTH_TOKENS_JSON", `{not json`)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "auth.tokens_json")
}

func TestTokenTable_JSONOverridesFile(t *testing.T) {
	cfg := &Config{Auth: Auth{
		Tenants: []Tenant{
			{Token: "a", Properties: []string{"1"}},
			{Token: "b", Properties: []string{"2"}},
			{Token: "a", Properties: []string{"5"}},
		},
		TokensJSON: `{"b": ["3", "4"]}`,
	}}
	table, err := cfg.TokenTable()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"a": {"1", "5"}, "b": {"3", "4"}}, table)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x/y"), expandPath("~/x/y"))
	assert.Equal(t, "/abs", expandPath("/abs"))
}
