package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level ga4diag configuration. It is loaded once at
// process start and not reloaded.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Auth      Auth      `mapstructure:"auth"`
	Analytics Analytics `mapstructure:"analytics"`
	Reports   Reports   `mapstructure:"reports"`
	Audit     Audit     `mapstructure:"audit"`
	Log       Log       `mapstructure:"log"`
	Output    Output    `mapstructure:"output"`
}

// Server defines the HTTP listener.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Auth defines the authorization table. Tenants lists each credential with
// the property ids it may query; it is a list rather than a map because viper
// lowercases map keys and credentials are case-sensitive. TokensJSON holds a
// credential-to-properties JSON object (convenient in the environment) and is
// merged over Tenants. SharedSecret is only consulted when the merged table
// is empty.
type Auth struct {
	Tenants      []Tenant `mapstructure:"tenants"`
	TokensJSON   string   `mapstructure:"tokens_json"`
	SharedSecret string   `mapstructure:"shared_secret"`
}

// Tenant is one credential and its permitted properties.
type Tenant struct {
	Token      string   `mapstructure:"token"`
	Properties []string `mapstructure:"properties"`
}

// Analytics defines how the Data API is reached.
type Analytics struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	CredentialsJSON string        `mapstructure:"credentials_json"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	MaxQPS          float64       `mapstructure:"max_qps"`
	Breaker         Breaker       `mapstructure:"breaker"`
}

// Breaker tunes the circuit breaker in front of the Data API.
type Breaker struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

// Reports defines per-report defaults.
type Reports struct {
	PageLimit    int    `mapstructure:"page_limit"`
	TrafficLimit int    `mapstructure:"traffic_limit"`
	SeriesLimit  int    `mapstructure:"series_limit"`
	StartDate    string `mapstructure:"start_date"`
	EndDate      string `mapstructure:"end_date"`
}

// Audit defines the optional gate-decision log.
type Audit struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// Log defines logging preferences.
type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Output defines CLI output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.read_timeout", DefaultServer.ReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServer.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultServer.ShutdownTimeout)
	v.SetDefault("auth.tokens_json", "")
	v.SetDefault("auth.shared_secret", "")
	v.SetDefault("analytics.credentials_file", "")
	v.SetDefault("analytics.credentials_json", "")
	v.SetDefault("analytics.query_timeout", DefaultAnalytics.QueryTimeout)
	v.SetDefault("analytics.max_qps", DefaultAnalytics.MaxQPS)
	v.SetDefault("analytics.breaker.max_requests", DefaultBreaker.MaxRequests)
	v.SetDefault("analytics.breaker.interval", DefaultBreaker.Interval)
	v.SetDefault("analytics.breaker.timeout", DefaultBreaker.Timeout)
	v.SetDefault("analytics.breaker.failure_ratio", DefaultBreaker.FailureRatio)
	v.SetDefault("analytics.breaker.min_requests", DefaultBreaker.MinRequests)
	v.SetDefault("reports.page_limit", DefaultReports.PageLimit)
	v.SetDefault("reports.traffic_limit", DefaultReports.TrafficLimit)
	v.SetDefault("reports.series_limit", DefaultReports.SeriesLimit)
	v.SetDefault("reports.start_date", DefaultReports.StartDate)
	v.SetDefault("reports.end_date", DefaultReports.EndDate)
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.db_path", filepath.Join(DefaultConfigDir, DefaultAuditDBName))
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.development", DefaultLog.Development)
	v.SetDefault("output.color", DefaultOutput.Color)
}

// Load reads configuration from the given path (or the default location),
// applies GA4DIAG_* environment overrides, and returns a Config with all
// defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if _, err := cfg.TokenTable(); err != nil {
		return nil, err
	}

	cfg.Audit.DBPath = expandPath(cfg.Audit.DBPath)
	cfg.Analytics.CredentialsFile = expandPath(cfg.Analytics.CredentialsFile)

	return &cfg, nil
}

// TokenTable merges Auth.Tenants and Auth.TokensJSON into one credential to
// property-list table. A token listed twice keeps the union of its
// properties.
func (c *Config) TokenTable() (map[string][]string, error) {
	table := make(map[string][]string, len(c.Auth.Tenants))
	for _, t := range c.Auth.Tenants {
		table[t.Token] = append(table[t.Token], t.Properties...)
	}
	raw := strings.TrimSpace(c.Auth.TokensJSON)
	if raw == "" {
		return table, nil
	}
	var fromJSON map[string][]string
	if err := json.Unmarshal([]byte(raw), &fromJSON); err != nil {
		return nil, fmt.Errorf("parsing auth.tokens_json: %w", err)
	}
	for cred, props := range fromJSON {
		table[cred] = props
	}
	return table, nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
