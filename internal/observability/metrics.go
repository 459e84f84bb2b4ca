package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fixturectl",
			Subsystem: "link",
			Name:      "frames_read_total",
			Help:      "Frames decoded from the fixture link.",
		},
	)
	framingErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fixturectl",
			Subsystem: "link",
			Name:      "framing_errors_total",
			Help:      "Frames discarded because the terminator arrived at the wrong distance.",
		},
	)
	transportErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fixturectl",
			Subsystem: "link",
			Name:      "transport_errors_total",
			Help:      "Byte stream I/O failures.",
		},
	)
	unknownCommands = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fixturectl",
			Subsystem: "dispatch",
			Name:      "unknown_commands_total",
			Help:      "Command frames that matched no table entry.",
		},
	)
	commandsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fixturectl",
			Subsystem: "dispatch",
			Name:      "commands_total",
			Help:      "Commands dispatched by name.",
		},
		[]string{"command"},
	)
	transferBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fixturectl",
			Subsystem: "file",
			Name:      "transfer_bytes_total",
			Help:      "Remote-file payload bytes by direction.",
		},
		[]string{"direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesRead, framingErrors, transportErrors,
			unknownCommands, commandsDispatched, transferBytes)
	})
}

func RecordFrameRead() {
	RegisterMetrics()
	framesRead.Inc()
}

func RecordFramingError() {
	RegisterMetrics()
	framingErrors.Inc()
}

func RecordTransportError() {
	RegisterMetrics()
	transportErrors.Inc()
}

func RecordUnknownCommand() {
	RegisterMetrics()
	unknownCommands.Inc()
}

func RecordCommand(name string) {
	RegisterMetrics()
	commandsDispatched.WithLabelValues(name).Inc()
}

func RecordTransfer(direction string, bytes int) {
	RegisterMetrics()
	transferBytes.WithLabelValues(direction).Add(float64(bytes))
}
