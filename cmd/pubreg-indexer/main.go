package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pubreg/internal/core/reportq"
	"pubreg/internal/modkit/repokit"
	"pubreg/internal/platform/config"
	"pubreg/internal/platform/i18n"
	"pubreg/internal/platform/logger"
	"pubreg/internal/platform/store"

	searchmod "pubreg/internal/services/api/search/module"
	searchrepo "pubreg/internal/services/api/search/repo"
	searchsvc "pubreg/internal/services/api/search/service"
	"pubreg/internal/services/indexer"
)

func main() {
	// PUBREG_CONFIG names an optional yaml file, the environment overrides it
	root, err := config.Load(os.Getenv("PUBREG_CONFIG"))
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("config")
	}
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	cfg := searchmod.ConfigFrom(root.Prefix("SEARCH_"))

	var (
		fView    = flag.String("view", cfg.SourceView, "source view to read documents from")
		fTable   = flag.String("table", cfg.Table, "search index table")
		fBatch   = flag.Int("batch", cfg.BatchSize, "documents per batch")
		fClear   = flag.Bool("clear", true, "clear the index before adding")
		fSchema  = flag.Bool("ensure-schema", true, "create the index table when missing")
		fDryRun  = flag.Bool("dry-run", false, "read the source and print a summary without writing")
		fGroupBy = flag.String("group-by", "year", "dry run summary columns, comma separated (year only)")
		fLocale  = flag.String("locale", "en", "dry run summary locale")
	)
	flag.Parse()

	logger.Init(logger.FromEnv())
	l := logger.Named("indexer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "pubreg-indexer",
		PG:      store.PGFrom(pgCfg, 2),
	}, store.WithLogger(*l))
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

	svc := searchsvc.New(st.PG, searchrepo.NewPG(*fTable), nil)

	stats, err := indexer.Run(ctx, svc, svc, indexer.Options{
		View:         *fView,
		BatchSize:    *fBatch,
		Clear:        *fClear,
		EnsureSchema: *fSchema,
		DryRun:       *fDryRun,
	})
	if err != nil {
		l.Panic().Err(err).Int("read", stats.Read).Msg("indexer failed")
	}

	if !*fDryRun {
		return
	}
	cat, err := i18n.Load(*fLocale)
	if err != nil {
		l.Panic().Err(err).Msg("load catalogs")
	}
	reg, err := reportq.NewRegistry(reportq.Columns, cat, cat.Locales(), cat.Default())
	if err != nil {
		l.Panic().Err(err).Msg("column registry")
	}
	out, err := indexer.Summary(ctx, reg, stats.Records, splitColumns(*fGroupBy), *fLocale)
	if err != nil {
		l.Panic().Err(err).Msg("dry run summary")
	}
	fmt.Println(out)
}

func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
