package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	clientsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "livetw",
		Name:      "reload_clients_connected",
		Help:      "Number of live reload clients currently connected.",
	})

	broadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "livetw",
		Name:      "reload_broadcasts_total",
		Help:      "Total number of full-reload broadcasts sent.",
	})

	relayLines = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livetw",
		Name:      "relay_lines_total",
		Help:      "Total output lines relayed per supervised role.",
	}, []string{"role"})

	processExits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livetw",
		Name:      "process_exits_total",
		Help:      "Total observed exits per supervised role.",
	}, []string{"role"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "livetw",
		Name:      "build_info",
		Help:      "Build metadata for the running livetw binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(clientsConnected, broadcastsTotal, relayLines, processExits, buildInfo)
}

// Registry returns the Prometheus registry containing all livetw metrics.
func Registry() *prometheus.Registry {
	return registry
}

// SetClientsConnected records the current size of the hub's client set.
func SetClientsConnected(n int) {
	clientsConnected.Set(float64(n))
}

// IncBroadcasts counts one completed reload broadcast.
func IncBroadcasts() {
	broadcastsTotal.Inc()
}

// AddRelayLines counts relayed output lines for a role.
func AddRelayLines(role string, n int) {
	if role == "" || n <= 0 {
		return
	}
	relayLines.WithLabelValues(role).Add(float64(n))
}

// IncProcessExit counts one observed process exit for a role.
func IncProcessExit(role string) {
	if role == "" {
		return
	}
	processExits.WithLabelValues(role).Inc()
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
