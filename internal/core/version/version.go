// Package version provides build information for the binaries
package version

// BuildInfo holds version information about a build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information for service
// version, commit and date are set at link time:
//
//	-ldflags "-X 'pubreg/internal/core/version.version=v0.1.0' -X 'pubreg/internal/core/version.commit=abcd'"
func Info(service string) BuildInfo {
	if service == "" {
		service = "pubreg"
	}
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
