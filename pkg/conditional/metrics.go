package conditional

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConditionalResponses tracks precondition short-circuits
	ConditionalResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restext_conditional_responses_total",
			Help: "Total number of 304 and 412 responses produced by entity tag evaluation",
		},
		[]string{"status"}, // "304", "412"
	)
)
