package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gommon "github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"k8s.io/client-go/dynamic"

	"github.com/kickplate/kickplate/pkg/auth"
	"github.com/kickplate/kickplate/pkg/configs/server"
	edagk8s "github.com/kickplate/kickplate/pkg/domain/edag/k8s"
	edagrunk8s "github.com/kickplate/kickplate/pkg/domain/edagrun/k8s"
	statusk8s "github.com/kickplate/kickplate/pkg/domain/status/k8s"
	"github.com/kickplate/kickplate/pkg/echoutil"
	"github.com/kickplate/kickplate/pkg/kubeutil"
	"github.com/kickplate/kickplate/pkg/metrics"
	"github.com/kickplate/kickplate/pkg/service"
	"github.com/kickplate/kickplate/pkg/telemetry"
	"github.com/kickplate/kickplate/pkg/utils/filewatch"
	"github.com/kickplate/kickplate/pkg/workloads/k8s"
)

func main() {
	configPath := flag.String("config", "", "path to config file. (default: $"+server.EnvConfigPath+")")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	kubeconfig := flag.String("kubeconfig", "", "(optional) path to kubeconfig file. overrides cluster.kubeconfig in config")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv(server.EnvConfigPath)
	}
	conf, err := server.Load(path)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}

	logger := gommon.New("edagd")
	lvl, ok := echoutil.ParseLevel(*loglevel)
	logger.SetLevel(lvl)
	if !ok {
		logger.Warnf("unknown loglevel: %s . fall-backed to warn", *loglevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, path, *kubeconfig, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, conf *server.ServerConfig, configPath string, kubeconfig string, logger *gommon.Logger) error {
	// restart (by the supervisor) to apply a new configuration.
	ctx, cancel, err := filewatch.UntilModifyContext(ctx, configPath)
	if err != nil {
		return fmt.Errorf("can not watch configuration: %w", err)
	}
	defer cancel()

	if kubeconfig == "" {
		kubeconfig = conf.Cluster().Kubeconfig()
	}
	restConfig, err := kubeutil.RestConfig(kubeconfig)
	if err != nil {
		return err
	}
	client, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("can not connect to kubernetes: %w", err)
	}
	cluster := k8s.AttachCluster(
		k8s.WrapDynamicClient(client),
		conf.Cluster().Namespace(),
		conf.Cluster().RequestTimeout(),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tracing := conf.Tracing()
	tp, shutdownTracing, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		ServiceName: tracing.ServiceName(),
		Exporter:    tracing.Exporter(),
		Endpoint:    tracing.Endpoint(),
		Insecure:    tracing.Insecure(),
	})
	if err != nil {
		return err
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(c); err != nil {
			logger.Warnf("flushing traces: %s", err)
		}
	}()

	kinds := conf.Cluster().Kinds()
	retry := conf.RunRetry()
	svc := service.New(
		cluster,
		edagk8s.New(kinds.EDAG()),
		edagrunk8s.New(kinds.EDAGRun(), kinds.EDAG()),
		statusk8s.New(cluster, kinds.Workflow(), logger),
		service.WithLogger(logger),
		service.WithMetrics(metrics.New(reg)),
		service.WithTracer(tp.Tracer("github.com/kickplate/kickplate/pkg/service")),
		service.WithRetryPolicy(service.RetryPolicy{
			MaxAttempts:     retry.MaxAttempts(),
			InitialInterval: retry.InitialInterval(),
			Multiplier:      retry.Multiplier(),
			Jitter:          retry.Jitter(),
		}),
	)

	tokens, err := tokenValidator(ctx, conf.Auth())
	if err != nil {
		return err
	}

	e := BuildServer(svc, tokens, reg, logger)
	for _, r := range e.Routes() {
		logger.Debugf("route: %s %s", r.Method, r.Path)
	}

	served := make(chan error, 1)
	go func() {
		served <- e.Start(fmt.Sprintf(":%d", conf.Port()))
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Infof("shutting down: %v", context.Cause(ctx))
	}

	graceful, cancelGraceful := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelGraceful()
	return e.Shutdown(graceful)
}

func tokenValidator(ctx context.Context, conf *server.AuthConfig) (auth.TokenValidator, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	jwksURL := conf.JWKSURL()
	if jwksURL == "" {
		u, err := auth.DiscoverJWKS(ctx, client, conf.OpenIDConfigURL())
		if err != nil {
			return nil, err
		}
		jwksURL = u
	}

	keys := auth.NewRemoteJWKS(
		jwksURL,
		auth.WithHTTPClient(client),
		auth.WithRefreshInterval(conf.JWKSRefreshInterval()),
	)
	return auth.NewJWTValidator(keys, conf.Issuer(), conf.Audience(), conf.Leeway()), nil
}
