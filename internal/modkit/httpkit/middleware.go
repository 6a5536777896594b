package httpkit

import (
	"compress/flate"
	"time"

	"pubreg/internal/platform/net/middleware"
)

// CommonStack returns the middleware every versioned API route runs through
func CommonStack() []middleware.Middleware {
	return []middleware.Middleware{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLog(500 * time.Millisecond),

		// report downloads need the filename visible to browsers
		middleware.CORS(middleware.CORSOptions{
			AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}
