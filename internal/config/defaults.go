// Package config provides configuration loading and defaults for ga4diag.
package config

import "time"

// DefaultConfigDir is the default location for ga4diag configuration.
const DefaultConfigDir = "~/.config/ga4diag"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultAuditDBName is the filename for the audit SQLite database.
const DefaultAuditDBName = "audit.db"

// EnvPrefix prefixes every environment override, e.g. GA4DIAG_AUTH_SHARED_SECRET.
const EnvPrefix = "GA4DIAG"

// DefaultServer holds the default HTTP server settings.
var DefaultServer = Server{
	Addr:            ":8080",
	ReadTimeout:     10 * time.Second,
	WriteTimeout:    60 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}

// DefaultBreaker trips after 60% of at least 5 calls fail within a minute.
var DefaultBreaker = Breaker{
	MaxRequests:  5,
	Interval:     60 * time.Second,
	Timeout:      30 * time.Second,
	FailureRatio: 0.6,
	MinRequests:  5,
}

// DefaultAnalytics holds the default backend settings.
var DefaultAnalytics = Analytics{
	QueryTimeout: 30 * time.Second,
	Breaker:      DefaultBreaker,
}

// DefaultReports holds the default row limits and date range. The dates are
// relative tokens understood by the Data API.
var DefaultReports = Reports{
	PageLimit:    1000,
	TrafficLimit: 50,
	SeriesLimit:  366,
	StartDate:    "28daysAgo",
	EndDate:      "yesterday",
}

// DefaultLog holds the default logging settings.
var DefaultLog = Log{
	Level: "info",
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}
