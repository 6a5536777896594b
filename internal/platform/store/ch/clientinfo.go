package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo names the process in system.query_log: app/role, the go
// version, the vcs revision and the host
func BuildClientInfo(app, role string) clickhouse.ClientInfo {
	app = strings.TrimSpace(app)
	if app == "" {
		app = "pubreg"
	}
	host, _ := os.Hostname()
	rev := "unknown"
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				rev = s.Value[:7]
			}
		}
	}

	info := clickhouse.ClientInfo{}
	for _, p := range [][2]string{
		{app, strings.TrimSpace(role)},
		{"go", runtime.Version()},
		{"commit", rev},
		{"host", host},
	} {
		info.Products = append(info.Products, struct{ Name, Version string }{p[0], p[1]})
	}
	return info
}
