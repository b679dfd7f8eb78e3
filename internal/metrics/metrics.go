// Package metrics exposes Prometheus counters for ledger activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EntryWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "haushalt_entry_writes_total",
		Help: "Entry upserts, labelled by category.",
	}, []string{"category"})

	ShadowWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haushalt_shadow_writes_total",
		Help: "Derived half-share rows written alongside primaries.",
	})

	EntryDeletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haushalt_entry_deletes_total",
		Help: "Entry family deletes, shadows included.",
	})

	SettlementCalcs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haushalt_settlement_calculations_total",
		Help: "Settlement derivations served.",
	})
)

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
