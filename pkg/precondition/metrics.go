package precondition

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PreconditionRequired tracks requests rejected with 428
	PreconditionRequired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restext_precondition_required_total",
			Help: "Total number of requests rejected for missing conditional headers",
		},
		[]string{"method"},
	)
)
