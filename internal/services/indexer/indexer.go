// Package indexer rebuilds the search index from the publications source view
package indexer

import (
	"context"
	"slices"
	"strings"

	"pubreg/internal/core/reportq"
	perr "pubreg/internal/platform/errors"
	"pubreg/internal/platform/logger"
	"pubreg/internal/services/api/search/domain"

	"github.com/google/uuid"
)

// DefaultBatchSize is used when Options.BatchSize is not positive
const DefaultBatchSize = 500

// Source pages documents out of a view ordered by id
type Source interface {
	SourcePage(ctx context.Context, view string, afterID int64, limit int) ([]domain.Document, error)
}

// Index is the part of the search index a rebuild writes to
type Index interface {
	EnsureSchema(ctx context.Context) error
	Add(ctx context.Context, docs []domain.Document) domain.Ack
	Clear(ctx context.Context) (domain.Ack, error)
	Commit(ctx context.Context) (domain.Ack, error)
}

// Options control one rebuild
type Options struct {
	View         string
	BatchSize    int
	Clear        bool
	EnsureSchema bool

	// DryRun reads the source without touching the index
	DryRun bool
}

// Stats summarizes a rebuild
type Stats struct {
	Batches   int
	Read      int
	Added     int
	Committed int

	// Records holds what a dry run read, in report view shape
	Records []reportq.ReportRecord
}

// Run pages the source into the index then commits once
// a failed batch is skipped by the index, the rebuild carries on
func Run(ctx context.Context, src Source, idx Index, opt Options) (Stats, error) {
	if src == nil || idx == nil {
		return Stats{}, perr.InvalidArgf("indexer: source and index are required")
	}
	if opt.View == "" {
		return Stats{}, perr.InvalidArgf("indexer: source view is required")
	}
	batch := opt.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	log := logger.C(ctx).With().Str("view", opt.View).Bool("dry_run", opt.DryRun).Logger()

	var st Stats
	if !opt.DryRun {
		if opt.EnsureSchema {
			if err := idx.EnsureSchema(ctx); err != nil {
				return st, err
			}
		}
		if opt.Clear {
			ack, err := idx.Clear(ctx)
			if err != nil {
				return st, err
			}
			log.Info().Int("documents", ack.Documents).Msg("indexer: cleared")
		}
	}

	var after int64
	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		page, err := src.SourcePage(ctx, opt.View, after, batch)
		if err != nil {
			return st, err
		}
		if len(page) == 0 {
			break
		}
		st.Batches++
		st.Read += len(page)
		after = page[len(page)-1].ID

		bl := log.With().Str("batch_id", uuid.NewString()).Int64("after_id", after).Logger()
		if opt.DryRun {
			st.Records = append(st.Records, records(page)...)
			bl.Debug().Int("documents", len(page)).Msg("indexer: read")
		} else {
			ack := idx.Add(ctx, page)
			st.Added += ack.Documents
			if ack.Documents < len(page) {
				bl.Warn().Int("documents", len(page)).Int("added", ack.Documents).Msg("indexer: batch not fully added")
			} else {
				bl.Debug().Int("documents", ack.Documents).Msg("indexer: added")
			}
		}
		if len(page) < batch {
			break
		}
	}

	if opt.DryRun {
		log.Info().Int("read", st.Read).Int("batches", st.Batches).Msg("indexer: dry run done")
		return st, nil
	}
	ack, err := idx.Commit(ctx)
	if err != nil {
		return st, err
	}
	st.Committed = ack.Documents
	log.Info().
		Int("read", st.Read).
		Int("added", st.Added).
		Int("committed", st.Committed).
		Int("batches", st.Batches).
		Msg("indexer: done")
	return st, nil
}

// SummaryColumns are the report columns a dry run record carries
// documents have no content type or faculty, so grouping by those would mislabel the summary
var SummaryColumns = []string{"year"}

func records(docs []domain.Document) []reportq.ReportRecord {
	out := make([]reportq.ReportRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, reportq.ReportRecord{
			PublicationID: d.ID,
			Year:          int64(d.Year),
		})
	}
	return out
}

// Summary renders what a dry run read as a tab text report grouped by columns
func Summary(ctx context.Context, reg *reportq.Registry, recs []reportq.ReportRecord, columns []string, locale string) (string, error) {
	for _, c := range columns {
		if !slices.Contains(SummaryColumns, c) {
			return "", perr.InvalidArgf("indexer: dry run can only group by %s, not %q", strings.Join(SummaryColumns, ","), c)
		}
	}
	b := reportq.Builder{Registry: reg, Source: reportq.Records(recs)}
	return b.BuildReportText(ctx, reportq.Request{Columns: columns}, locale)
}
