package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/cassiomorais/yamoney/internal/infrastructure/config"
	"github.com/cassiomorais/yamoney/internal/infrastructure/observability"
	"github.com/cassiomorais/yamoney/pkg/yamoney"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const metricsNamespace = "yamoney"

type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     zerolog.Logger
	Metrics    *observability.Metrics
	HTTPClient *http.Client

	logOutput io.Writer
	tracer    *sdktrace.TracerProvider
}

// New loads the config at configPath and wires the logger, metrics and HTTP
// client. A nil logOutput logs to stderr.
func New(configPath string, logOutput io.Writer) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	app := &App{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     observability.InitLogger(cfg.Observability.LogLevel, logOutput),
		Metrics:    observability.NewMetrics(metricsNamespace),
		HTTPClient: &http.Client{
			Timeout:   cfg.API.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logOutput: logOutput,
	}

	if cfg.FileErr != nil {
		app.Logger.Warn().Err(cfg.FileErr).Str("config", configPath).Msg("Ignoring unreadable config file")
	}

	if cfg.Observability.EnableTracing {
		app.EnableTracing(app.traceOutput())
	}

	app.Logger.Debug().
		Str("config", configPath).
		Bool("authorized", cfg.Authorized()).
		Msg("Configuration loaded")

	return app, nil
}

// SetLogLevel replaces the logger with one at the given level.
func (a *App) SetLogLevel(level string) {
	a.Logger = observability.InitLogger(level, a.logOutput)
}

// EnableTracing installs a tracer provider that prints spans to w. A tracer
// that fails to start is logged and tracing stays off.
func (a *App) EnableTracing(w io.Writer) {
	if a.tracer != nil {
		return
	}
	tp, err := observability.InitTracer(w)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		return
	}
	a.tracer = tp
	a.Logger.Debug().Msg("Tracing enabled")
}

// Transport builds an instrumented HTTP transport. An empty token leaves
// the Authorization header off.
func (a *App) Transport(token string) yamoney.Transport {
	opts := []yamoney.TransportOption{
		yamoney.WithBaseURL(a.Config.API.BaseURL),
		yamoney.WithHTTPClient(a.HTTPClient),
		yamoney.WithTransportLogger(a.Logger),
	}
	if token != "" {
		opts = append(opts, yamoney.WithToken(token))
	}

	var tp trace.TracerProvider
	if a.tracer != nil {
		tp = a.tracer
	}
	return observability.NewInstrumentedTransport(yamoney.NewHTTPTransport(opts...), a.Metrics, tp)
}

// Client is an API client for the configured token.
func (a *App) Client() *yamoney.Client {
	return yamoney.NewClient(a.Config.Token,
		yamoney.WithTransport(a.Transport(a.Config.Token)),
		yamoney.WithLogger(a.Logger),
	)
}

func (a *App) Authorizer(clientID, redirectURI string) *yamoney.Authorizer {
	return yamoney.NewAuthorizer(clientID, redirectURI,
		yamoney.WithTransport(a.Transport("")),
		yamoney.WithLogger(a.Logger),
	)
}

func (a *App) TokenStore() *config.TokenStore {
	return config.NewTokenStore(a.ConfigPath)
}

// traceOutput is where spans go: the log output, or stderr.
func (a *App) traceOutput() io.Writer {
	if a.logOutput != nil {
		return a.logOutput
	}
	return os.Stderr
}

// Close logs the metrics summary and flushes pending spans.
func (a *App) Close(ctx context.Context) {
	a.Metrics.LogSummary(a.Logger)

	if a.tracer != nil {
		if err := observability.Shutdown(ctx, a.tracer); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to shut down tracer")
		}
	}
}
