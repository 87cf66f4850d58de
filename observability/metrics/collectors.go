package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes.
const (
	OutcomeOriginal     = "original"
	OutcomeShortCircuit = "short_circuit"
	OutcomeFault        = "fault"
	OutcomeDisabled     = "disabled"
)

// Substitution outcomes.
const (
	SubstInstalled        = "installed"
	SubstReused           = "reused"
	SubstReplacedStale    = "replaced_stale"
	SubstUncached         = "uncached"
	SubstSkippedConflict  = "skipped_conflict"
	SubstSkippedAmbiguous = "skipped_ambiguous"
	SubstSkippedDisabled  = "skipped_disabled"
)

// Module load outcomes.
const (
	ModuleLoaded  = "loaded"
	ModuleSkipped = "skipped"
	ModuleFailed  = "failed"
)

var (
	// DispatchTotal counts intercepted invocations by outcome.
	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xhook",
		Subsystem: "hook",
		Name:      "dispatch_total",
		Help:      "Intercepted invocations by final outcome",
	}, []string{"outcome"})

	// CallbackFaults counts faults raised by hook callbacks by stage.
	CallbackFaults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xhook",
		Subsystem: "hook",
		Name:      "callback_faults_total",
		Help:      "Faults raised by hook callbacks",
	}, []string{"stage"})

	// Substitutions counts resource substitution decisions by outcome.
	Substitutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xhook",
		Subsystem: "resources",
		Name:      "substitutions_total",
		Help:      "Resource substitution decisions",
	}, []string{"outcome"})

	// FirstLoads counts first-load notifications.
	FirstLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "xhook",
		Subsystem: "resources",
		Name:      "first_loads_total",
		Help:      "First-load notifications fired per resource key generation",
	})

	// ModuleEntries counts plugin entry points by load outcome.
	ModuleEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xhook",
		Subsystem: "boot",
		Name:      "entry_points_total",
		Help:      "Plugin entry points by load outcome",
	}, []string{"outcome"})

	// Bundles counts plugin bundles by validation outcome.
	Bundles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xhook",
		Subsystem: "boot",
		Name:      "bundles_total",
		Help:      "Plugin bundles by validation outcome",
	}, []string{"outcome"})
)

func init() {
	registry.MustRegister(DispatchTotal, CallbackFaults, Substitutions, FirstLoads, ModuleEntries, Bundles)
}
