package storelens

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	uri      string
	database string

	connectTimeout   time.Duration
	maxPoolSize      uint64
	readinessTimeout time.Duration

	collections []Collection
	limits      Limits

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMongo configures the MongoDB connection.
func WithMongo(uri, database string) Option {
	return optionFunc(func(c *clientConfig) {
		c.uri = uri
		c.database = database
	})
}

// WithConnectTimeout bounds connection establishment and server
// selection. Zero keeps the driver default.
func WithConnectTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.connectTimeout = d
	})
}

// WithMaxPoolSize caps the driver connection pool. Zero keeps the
// driver default.
func WithMaxPoolSize(size uint64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPoolSize = size
	})
}

// WithReadinessTimeout bounds how long New waits for the store to
// answer a ping. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithCollections replaces the built-in PageGrid catalog with the
// application's own collection declarations. Only declared collections
// are queryable.
func WithCollections(collections ...Collection) Option {
	return optionFunc(func(c *clientConfig) {
		c.collections = collections
	})
}

// WithLimits overrides the query bounds (max rows, default limit,
// timeouts). Zero fields keep the built-in defaults.
func WithLimits(l Limits) Option {
	return optionFunc(func(c *clientConfig) {
		c.limits = l
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and
// durations) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
