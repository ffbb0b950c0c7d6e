package ksyms

import "github.com/prometheus/client_golang/prometheus"

var (
	buildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ksymmod_builds_total",
		Help: "Number of symbol table build attempts.",
	})
	buildFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ksymmod_build_failures_total",
		Help: "Number of symbol table builds that failed.",
	})
	modulesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ksymmod_modules_loaded",
		Help: "Modules in the live symbol table.",
	})
	symbolsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ksymmod_symbols_loaded",
		Help: "Symbols in the live symbol table.",
	})
	resolveHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ksymmod_resolutions_total",
		Help: "Addresses resolved to a module symbol or range.",
	})
	resolveMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ksymmod_resolution_misses_total",
		Help: "Addresses no loaded module accounted for.",
	})
)

// RegisterMetrics registers the package collectors with reg. Call at
// most once per registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		buildsTotal,
		buildFailuresTotal,
		modulesLoaded,
		symbolsLoaded,
		resolveHits,
		resolveMisses,
	)
}
