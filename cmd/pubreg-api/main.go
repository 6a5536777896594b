// @title         Publication Registry API
// @version       0.1.0
// @description   Distinct-count publication reports and search index administration

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pubreg/internal/modkit/repokit"
	"pubreg/internal/platform/config"
	"pubreg/internal/platform/logger"
	"pubreg/internal/platform/metrics"
	phttp "pubreg/internal/platform/net/http"
	"pubreg/internal/platform/store"
	"pubreg/internal/platform/store/pg"

	"pubreg/internal/services/api"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// PUBREG_CONFIG names an optional yaml file, the environment overrides it
	root, err := config.Load(os.Getenv("PUBREG_CONFIG"))
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("config")
	}
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*

	// bring up logging early
	logger.Init(logger.FromEnv())
	l := logger.Get()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "pubreg-api",
			PG:      store.PGFrom(pgCfg, 4),
			CH:      store.CHFrom(chCfg, "api"), // optional record source for reports
		},
		store.WithLogger(*l),
		store.WithQueryObserver(pg.ObserverFunc(func(_ context.Context, ev pg.Event) {
			m.ObserveQuery(ev.Err, ev.Slow, ev.Elapsed)
		})),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail fast when a configured backend does not answer
	repokit.MustGuard(context.Background(), st)

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(root.Prefix("CORE_"))

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			Metrics:        m,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info().Str("addr", srv.Addr()).Bool("clickhouse", st.CH != nil).Msg("pubreg-api starting")
	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
