// Package metrics provides Prometheus-compatible metrics for keybridge.
package metrics

// EngineMetrics holds all key-engine metrics.
type EngineMetrics struct {
	registry *Registry

	// Counters
	EventsTotal      *Counter
	RepeatsTotal     *Counter
	SynthesizedTotal *Counter
	AbsorbedTotal    *Counter
	NeutralTotal     *Counter
	AcksTotal        *Counter

	// Gauges
	PendingResponses *Gauge
	KeysPressed      *Gauge
}

// NewEngineMetrics creates and registers all key-engine metrics.
func NewEngineMetrics(registry *Registry) *EngineMetrics {
	if registry == nil {
		registry = Default()
	}

	return &EngineMetrics{
		registry: registry,

		EventsTotal: registry.RegisterCounter(
			"events_total",
			"Total number of primary key events dispatched",
			nil,
		),
		RepeatsTotal: registry.RegisterCounter(
			"repeats_total",
			"Total number of repeat key events dispatched",
			nil,
		),
		SynthesizedTotal: registry.RegisterCounter(
			"synthesized_total",
			"Total number of synthesized reconciliation events",
			nil,
		),
		AbsorbedTotal: registry.RegisterCounter(
			"absorbed_total",
			"Total number of raw inputs absorbed without an event",
			nil,
		),
		NeutralTotal: registry.RegisterCounter(
			"neutral_total",
			"Total number of neutral liveness events dispatched",
			nil,
		),
		AcksTotal: registry.RegisterCounter(
			"acks_total",
			"Total number of host acknowledgments received",
			nil,
		),

		PendingResponses: registry.RegisterGauge(
			"pending_responses",
			"Number of dispatched events awaiting host acknowledgment",
			nil,
		),
		KeysPressed: registry.RegisterGauge(
			"keys_pressed",
			"Number of physical keys currently recorded as down",
			nil,
		),
	}
}
