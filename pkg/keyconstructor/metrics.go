package keyconstructor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KeyConstructions tracks key computations by whether the memoized
	// value was reused
	KeyConstructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restext_key_constructions_total",
			Help: "Total number of key constructor invocations",
		},
		[]string{"memoized"}, // "true", "false"
	)
)
