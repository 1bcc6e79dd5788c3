package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "async_button"

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return reg
}

// Handler serves the metrics of reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Observer records coordinator lifecycle events. It satisfies
// coordinator.Observer.
type Observer struct {
	triggers      prometheus.Counter
	ignored       prometheus.Counter
	completions   prometheus.Counter
	loadingShown  prometheus.Counter
	cycleDuration *prometheus.HistogramVec
}

// NewObserver creates an Observer and registers its collectors with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		triggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "Triggers that started a cycle",
		}),
		ignored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_triggers_total",
			Help:      "Triggers ignored because an action was in flight",
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_signals_total",
			Help:      "Completion signals received from actions, including repeated ones",
		}),
		loadingShown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loading_shown_total",
			Help:      "Cycles whose grace period elapsed before completion",
		}),
		cycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time from trigger to settle",
			Buckets:   []float64{.1, .25, .5, .75, 1, 1.5, 2.5, 5, 10, 30},
		}, []string{"showed_loading"}),
	}

	reg.MustRegister(o.triggers, o.ignored, o.completions, o.loadingShown, o.cycleDuration)

	return o
}

// Triggered counts a started cycle.
func (o *Observer) Triggered(uint64) {
	o.triggers.Inc()
}

// TriggerIgnored counts an ignored trigger.
func (o *Observer) TriggerIgnored() {
	o.ignored.Inc()
}

// CompletionSignalled counts a completion signal.
func (o *Observer) CompletionSignalled(uint64) {
	o.completions.Inc()
}

// LoadingShown counts a cycle that showed the busy indicator.
func (o *Observer) LoadingShown(uint64) {
	o.loadingShown.Inc()
}

// Settled records the cycle duration.
func (o *Observer) Settled(_ uint64, elapsed time.Duration, showedLoading bool) {
	label := "false"
	if showedLoading {
		label = "true"
	}

	o.cycleDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}
