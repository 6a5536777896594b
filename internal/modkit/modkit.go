// Package modkit wires API modules: the deps they share, the options
// main passes them and the Base they embed for routing
package modkit

import (
	"pubreg/internal/modkit/module"
	"pubreg/internal/modkit/repokit"
	"pubreg/internal/platform/config"
	"pubreg/internal/platform/logger"
	"pubreg/internal/platform/metrics"
)

// Module is what the api mounts
type Module = module.Module

// Deps are handed to every module constructor. PG and CH are nil when
// the backend is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  repokit.Clickhouse

	// nil when metrics are off, collectors tolerate that
	Metrics *metrics.Metrics
}
