package module

import (
	"pubreg/internal/platform/config"
)

// Config holds SEARCH_ settings
type Config struct {
	Table        string
	EnsureSchema bool
	BatchSize    int
	SourceView   string
}

// ConfigFrom reads settings from c, which should already carry the SEARCH_ prefix
func ConfigFrom(c config.Conf) Config {
	return Config{
		Table:        c.MayString("TABLE", "publication_search_index"),
		EnsureSchema: c.MayBool("ENSURE_SCHEMA", false),
		BatchSize:    c.MayInt("BATCH_SIZE", 500),
		SourceView:   c.MayString("SOURCE_VIEW", "publication_search_source"),
	}
}
