package store

import (
	"time"

	"pubreg/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	// AppName is reported to postgres as application_name
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and statement logging
type PGConfig struct {
	Enabled  bool
	URL      string
	MaxConns int32
	// LogSQL logs every statement, otherwise only slow or failed ones
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientName and ClientTag are reported to the server as client info
	ClientName string
	ClientTag  string

	DialTimeout time.Duration
	PingTimeout time.Duration // default 5s
}

// PGFrom reads a PGConfig from c, normally the SERVICE_PGSQL_ view
// DBURL is required
func PGFrom(c config.Conf, maxConns int) PGConfig {
	return PGConfig{
		Enabled:        true,
		URL:            c.MustString("DBURL"),
		MaxConns:       int32(c.MayInt("MAX_CONNS", maxConns)),
		LogSQL:         c.MayBool("LOG_SQL", false),
		SlowQueryMs:    c.MayInt("SLOW_MS", 500),
		ConnectRetries: c.MayInt("CONNECT_RETRIES", 20),
		PingTimeout:    c.MayDuration("PING_TIMEOUT", 3*time.Second),
	}
}

// CHFrom reads a CHConfig from c, normally the SERVICE_CLICKHOUSE_ view
// DBURL is only required when ENABLED is set
func CHFrom(c config.Conf, role string) CHConfig {
	if !c.MayBool("ENABLED", false) {
		return CHConfig{}
	}
	return CHConfig{
		Enabled:     true,
		URL:         c.MustString("DBURL"),
		ClientName:  "pubreg",
		ClientTag:   role,
		DialTimeout: c.MayDuration("DIAL_TIMEOUT", 0),
		PingTimeout: c.MayDuration("PING_TIMEOUT", 5*time.Second),
	}
}
