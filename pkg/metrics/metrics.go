package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "teamsteps", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "teamsteps", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	StoreMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "teamsteps", Name: "store_mutations_total", Help: "User store mutations by operation and result (ok, not_found, conflict, persist_error)."},
		[]string{"op", "result"},
	)
	StorePersistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "teamsteps", Name: "store_persist_failures_total", Help: "Failed writes of the user document by backend."},
		[]string{"backend"},
	)
	StoreUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "teamsteps", Name: "store_users", Help: "Number of users currently held by the store."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(StoreMutations)
	reg.MustRegister(StorePersistFailures)
	reg.MustRegister(StoreUsers)
}
