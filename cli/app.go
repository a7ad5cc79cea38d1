package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/nearzap/nearzap/pkg/analytics"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/params"
	"github.com/nearzap/nearzap/pkg/server"
	"github.com/nearzap/nearzap/pkg/transformer"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("nearzap", "NEAR JSON RPC adapter for Zapier")

	nearNetwork        = app.Flag("near-network", "network used when an operation doesn't name one (mainnet, testnet or betanet)").Envar("NEAR_NETWORK").Default(string(near.DefaultNetwork)).String()
	nearRPC            = app.Flag("near-rpc", "URL of a NEAR RPC node serving --near-network, instead of the public endpoint").Envar("NEAR_RPC").Default("").String()
	bind               = app.Flag("bind", "network interface to bind to (e.g. 0.0.0.0) ").Envar("BIND").Default("localhost").String()
	port               = app.Flag("port", "port to serve the adapter").Envar("PORT").Default("23890").Int()
	httpsKey           = app.Flag("https-key", "https keyfile").Envar("HTTPS_KEY").Default("").String()
	httpsCert          = app.Flag("https-cert", "https certificate").Envar("HTTPS_CERT").Default("").String()
	logFile            = app.Flag("log-file", "write logs to a file").Envar("LOG_FILE").Default("").String()
	cacheTimeout       = app.Flag("cache-timeout", "how long responses pinned to a block are cached").Envar("CACHE_TIMEOUT").Default("60s").Duration()
	healthCheckPercent = app.Flag("health-check-healthy-request-amount", "configure the minimum request success rate for healthcheck").Envar("HEALTH_CHECK_REQUEST_PERCENT").Default("80").Int()

	devMode = app.Flag("dev", "[Insecure] Developer mode").Envar("DEV").Default("false").Bool()
)

func action(pc *kingpin.ParseContext) error {
	addr := fmt.Sprintf("%s:%d", *bind, *port)
	writers := []io.Writer{os.Stdout}

	if logFile != nil && (*logFile) != "" {
		file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "Failed to open log file %s", *logFile)
		}
		defer file.Close()
		writers = append(writers, file)
	}

	logWriter := io.MultiWriter(writers...)
	logger := log.NewLogfmtLogger(logWriter)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if !*devMode {
		logger = level.NewFilter(logger, level.AllowWarn())
	}

	fallback, err := near.ParseNetwork(*nearNetwork)
	if err != nil {
		return errors.Wrap(err, "Invalid --near-network")
	}

	ctx, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	nearRequestAnalytics := analytics.NewAnalytics(50)
	zapierRequestAnalytics := analytics.NewAnalytics(50)

	var nodes []*near.Near
	for _, network := range near.AllNetworks {
		network := near.Network(network)

		rpcURL := network.URL()
		if network == fallback && *nearRPC != "" {
			rpcURL = *nearRPC
		}

		client, err := near.NewClient(
			rpcURL,
			near.SetDebug(*devMode),
			near.SetLogWriter(logWriter),
			near.SetLogger(log.With(logger, "network", network)),
			near.SetContext(ctx),
			near.SetCacheTimeout(*cacheTimeout),
			near.SetAnalytics(nearRequestAnalytics),
		)
		if err != nil {
			return errors.Wrapf(err, "Failed to setup NEAR %s client", network)
		}

		node, err := near.New(client, network)
		if err != nil {
			return errors.Wrapf(err, "Failed to setup NEAR %s", network)
		}
		nodes = append(nodes, node)
	}

	pool, err := near.NewPool(fallback, nodes...)
	if err != nil {
		return errors.Wrap(err, "near#NewPool")
	}

	sender, err := near.NewRPCSender(pool)
	if err != nil {
		return errors.Wrap(err, "near#NewRPCSender")
	}

	t, err := transformer.New(
		pool,
		transformer.DefaultOperations(pool, sender),
		transformer.SetDebug(*devMode),
		transformer.SetLogger(logger),
	)
	if err != nil {
		return errors.Wrap(err, "transformer#New")
	}

	httpsKeyFile := getEmptyStringIfFileDoesntExist(*httpsKey, logger)
	httpsCertFile := getEmptyStringIfFileDoesntExist(*httpsCert, logger)

	s, err := server.New(
		pool,
		t,
		addr,
		server.SetLogWriter(logWriter),
		server.SetLogger(logger),
		server.SetDebug(*devMode),
		server.SetHttps(httpsKeyFile, httpsCertFile),
		server.SetNearAnalytics(nearRequestAnalytics),
		server.SetZapierAnalytics(zapierRequestAnalytics),
		server.SetHealthCheckPercent(healthCheckPercent),
	)
	if err != nil {
		return errors.Wrap(err, "server#New")
	}

	level.Info(logger).Log("msg", "starting", "version", params.VersionWithGitSha, "network", fallback, "networks", fmt.Sprint(pool.Networks()), "cacheTimeout", *cacheTimeout)

	return s.Start()
}

func getEmptyStringIfFileDoesntExist(file string, l log.Logger) string {
	if file == "" {
		return ""
	}
	_, err := os.Stat(file)
	if os.IsNotExist(err) {
		l.Log("file does not exist", file)
		return ""
	}
	return file
}

func Run() {
	app.Version(params.VersionWithGitSha)
	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func init() {
	app.Action(action)
}
