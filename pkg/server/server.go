package server

import (
	"io"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/heptiolabs/healthcheck"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/nearzap/nearzap/pkg/analytics"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/transformer"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Option func(*Server) error

type Server struct {
	address     string
	transformer *transformer.Transformer
	pool        *near.Pool
	logWriter   io.Writer
	logger      log.Logger
	httpsKey    string
	httpsCert   string
	debug       bool
	echo        *echo.Echo
	health      healthcheck.Handler
	registry    *prometheus.Registry
	metrics     *Metrics

	blocksMutex     sync.RWMutex
	lastBlock       uint64
	nextBlockCheck  *time.Time
	lastBlockStatus error

	healthCheckPercent     *int
	nearRequestAnalytics   *analytics.Analytics
	zapierRequestAnalytics *analytics.Analytics
}

func New(
	pool *near.Pool,
	transformer *transformer.Transformer,
	addr string,
	opts ...Option,
) (*Server, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}
	if transformer == nil {
		return nil, errors.New("transformer cannot be nil")
	}

	defaultHealthCheckPercent := 80
	s := &Server{
		address:                addr,
		pool:                   pool,
		transformer:            transformer,
		logWriter:              ioutil.Discard,
		logger:                 log.NewNopLogger(),
		echo:                   echo.New(),
		health:                 healthcheck.NewHandler(),
		healthCheckPercent:     &defaultHealthCheckPercent,
		nearRequestAnalytics:   analytics.NewAnalytics(50),
		zapierRequestAnalytics: analytics.NewAnalytics(50),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)

	s.routes()

	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.Logger.SetOutput(s.logWriter)
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if s.debug {
		e.Use(s.requestLogger)
	}

	s.health.AddLivenessCheck("near-blocks-syncing", s.testBlocksSyncing)
	s.health.AddLivenessCheck("near-error-rate", s.testNodeErrorRate)
	s.health.AddLivenessCheck("nearzap-error-rate", s.testZapierErrorRate)
	s.health.AddReadinessCheck("near-connection", s.testConnectionToNode)

	e.GET("/live", echo.WrapHandler(http.HandlerFunc(s.health.LiveEndpoint)))
	e.GET("/ready", echo.WrapHandler(http.HandlerFunc(s.health.ReadyEndpoint)))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	e.GET("/operations", s.operationsHandler)

	for _, kind := range transformer.AllKinds {
		e.POST("/"+string(kind)+"/:key", s.operationHandler(kind))
	}
}

// Handler serves the routes without listening, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	s.logger.Log("msg", "NEAR Zapier adapter listening", "addr", s.address, "https", s.httpsKey != "" && s.httpsCert != "")

	if s.httpsKey != "" && s.httpsCert != "" {
		return s.echo.StartTLS(s.address, s.httpsCert, s.httpsKey)
	}

	return s.echo.Start(s.address)
}

func SetLogWriter(logWriter io.Writer) Option {
	return func(p *Server) error {
		p.logWriter = logWriter
		return nil
	}
}

func SetLogger(l log.Logger) Option {
	return func(p *Server) error {
		p.logger = log.WithPrefix(l, "component", "server")
		return nil
	}
}

func SetDebug(debug bool) Option {
	return func(p *Server) error {
		p.debug = debug
		return nil
	}
}

func SetHttps(key string, cert string) Option {
	return func(p *Server) error {
		p.httpsKey = key
		p.httpsCert = cert
		return nil
	}
}

func SetNearAnalytics(analytics *analytics.Analytics) Option {
	return func(p *Server) error {
		p.nearRequestAnalytics = analytics
		return nil
	}
}

func SetZapierAnalytics(analytics *analytics.Analytics) Option {
	return func(p *Server) error {
		p.zapierRequestAnalytics = analytics
		return nil
	}
}

func SetHealthCheckPercent(percent *int) Option {
	return func(p *Server) error {
		if percent == nil || *percent < 0 || *percent > 100 {
			return errors.New("health check percent must be between 0 and 100")
		}
		p.healthCheckPercent = percent
		return nil
	}
}

// SetRegistry exposes the given registry on /metrics instead of a private one.
func SetRegistry(registry *prometheus.Registry) Option {
	return func(p *Server) error {
		p.registry = registry
		return nil
	}
}
