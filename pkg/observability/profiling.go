package observability

import (
	"os"

	"github.com/grafana/pyroscope-go"

	"convert-service/pkg/config"
)

// StartProfiling attaches continuous profiling when a pyroscope server address
// is configured, either in the profiling config section or via
// PYROSCOPE_SERVER_ADDRESS. A missing address disables profiling.
func StartProfiling(appName string, cfg config.ProfilingConfig) {
	addr := ""
	if cfg.Enabled {
		addr = cfg.ServerAddress
	}
	if addr == "" {
		addr = os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	}
	if addr == "" {
		return
	}

	_, _ = pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   addr,
		Logger:          nil,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
}
