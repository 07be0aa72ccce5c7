package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_login_rate_limited_total",
		Help: "Login attempts rejected by the sliding-window limiter, by axis",
	}, []string{"axis"})

	blockedHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atelier_login_blocked_hits_total",
		Help: "Login attempts rejected because the source IP is blocked",
	})

	blocksCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_ip_blocks_created_total",
		Help: "Block records created, by origin (auto or manual)",
	}, []string{"origin"})

	failOpen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atelier_limiter_fail_open_total",
		Help: "Rate-limit checks allowed because the counter store was unreachable",
	})
)

func RecordRateLimited(axis string) {
	rateLimited.WithLabelValues(axis).Inc()
}

func RecordBlockedHit() {
	blockedHits.Inc()
}

func RecordBlockCreated(origin string) {
	blocksCreated.WithLabelValues(origin).Inc()
}

func RecordFailOpen() {
	failOpen.Inc()
}
