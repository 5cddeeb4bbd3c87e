package ga4

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/ga4diag/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// API is the subset of the Data API the client needs.
type API interface {
	GetMetadata(ctx context.Context, name string) (*analyticsdata.Metadata, error)
	RunReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error)
}

// dataAPI adapts the generated service to API.
type dataAPI struct {
	svc *analyticsdata.Service
}

func (d dataAPI) GetMetadata(ctx context.Context, name string) (*analyticsdata.Metadata, error) {
	return d.svc.Properties.GetMetadata(name).Context(ctx).Do()
}

func (d dataAPI) RunReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	return d.svc.Properties.RunReport(property, req).Context(ctx).Do()
}

// Client queries the Data API through a rate limiter and circuit breaker.
// It never retries. Safe for concurrent use.
type Client struct {
	api     API
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *clientMetrics
	log     *zap.Logger
}

// New builds a Client backed by the real Data API. Credentials come from
// cfg.CredentialsJSON, then cfg.CredentialsFile, then Application Default
// Credentials.
func New(ctx context.Context, cfg config.Analytics, reg prometheus.Registerer, log *zap.Logger) (*Client, error) {
	creds, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := analyticsdata.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating analytics data service: %w", err)
	}
	return NewWithAPI(dataAPI{svc: svc}, cfg, reg, log), nil
}

func loadCredentials(ctx context.Context, cfg config.Analytics) (*google.Credentials, error) {
	switch {
	case cfg.CredentialsJSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), analyticsdata.AnalyticsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parsing analytics credentials: %w", err)
		}
		return creds, nil
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("reading analytics credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, analyticsdata.AnalyticsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parsing analytics credentials %s: %w", cfg.CredentialsFile, err)
		}
		return creds, nil
	default:
		creds, err := google.FindDefaultCredentials(ctx, analyticsdata.AnalyticsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("finding default analytics credentials: %w", err)
		}
		return creds, nil
	}
}

// NewWithAPI builds a Client around api. reg and log may be nil.
func NewWithAPI(api API, cfg config.Analytics, reg prometheus.Registerer, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		api:     api,
		metrics: newClientMetrics(reg),
		log:     log,
	}
	if cfg.MaxQPS > 0 {
		burst := int(cfg.MaxQPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxQPS), burst)
	}

	b := cfg.Breaker
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ga4-data-api",
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < b.MinRequests || counts.Requests == 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= b.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// A caller hanging up says nothing about the backend.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// Schema returns the dimensions and metrics propertyID exposes.
func (c *Client) Schema(ctx context.Context, propertyID string) (Schema, error) {
	out, err := c.call(ctx, "metadata", func(ctx context.Context) (any, error) {
		return c.api.GetMetadata(ctx, metadataName(propertyID))
	})
	if err != nil {
		return Schema{}, err
	}
	md, _ := out.(*analyticsdata.Metadata)
	return convertMetadata(md), nil
}

// RunReport runs q and returns its rows in backend order.
func (c *Client) RunReport(ctx context.Context, q Query) ([]Row, error) {
	req := buildRequest(q)
	out, err := c.call(ctx, "runReport", func(ctx context.Context) (any, error) {
		return c.api.RunReport(ctx, PropertyName(q.PropertyID), req)
	})
	if err != nil {
		return nil, err
	}
	resp, _ := out.(*analyticsdata.RunReportResponse)
	return convertRows(resp, len(q.Metrics)), nil
}

// call runs fn behind the limiter and breaker and records the outcome.
func (c *Client) call(ctx context.Context, op string, fn func(context.Context) (any, error)) (any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.observe(op, 0, err)
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	c.metrics.observe(op, time.Since(start), err)
	if err != nil {
		c.log.Warn("analytics data api call failed",
			zap.String("op", op),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}
	return out, nil
}
