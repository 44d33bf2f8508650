package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "surakshit_pipeline_duration_seconds",
	Help:    "Duration of the finding remediation pipeline in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"outcome"})

var SessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "surakshit_session_transitions_total",
	Help: "The total number of session status transitions",
}, []string{"status"})

var FindingsReceivedAmount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "surakshit_findings_received_amount",
	Help: "The total number of raw findings accepted for processing",
})
