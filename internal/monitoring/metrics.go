package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	RoundsPlayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_rounds_total",
			Help: "Settled rounds by game",
		},
		[]string{"game"},
	)

	AmountWagered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_wagered_total",
			Help: "Credits staked on settled rounds",
		},
		[]string{"game"},
	)

	AmountPaid = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_paid_total",
			Help: "Credits returned to players at settlement",
		},
		[]string{"game"},
	)

	SessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "casino_sessions_created_total",
			Help: "Total sessions opened",
		},
	)
)

// Init registers the collectors with the default registry. Call once.
func Init() {
	prometheus.MustRegister(HttpRequests, RoundsPlayed, AmountWagered, AmountPaid, SessionsCreated)
}

func RecordRound(game string, wagered, paid float64) {
	RoundsPlayed.WithLabelValues(game).Inc()
	AmountWagered.WithLabelValues(game).Add(wagered)
	AmountPaid.WithLabelValues(game).Add(paid)
}
