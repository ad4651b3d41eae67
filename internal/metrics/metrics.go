// Package metrics exposes Prometheus collectors for the assistant pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClassifierDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asistan_classifier_decisions_total",
			Help: "Relevance classifier decisions by outcome",
		},
		[]string{"relevant"},
	)

	ResolverHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asistan_resolver_hits_total",
			Help: "Messages answered by each resolver; \"none\" when nothing was retrieved",
		},
		[]string{"resolver"},
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asistan_resolve_duration_seconds",
			Help:    "Time spent in the resolver cascade",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asistan_llm_requests_total",
			Help: "Generative backend calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	StructuredReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asistan_structured_replies_total",
			Help: "Assistant replies by detected structure kind",
		},
		[]string{"kind"},
	)
)

// ObserveClassification records one relevance decision.
func ObserveClassification(relevant bool) {
	ClassifierDecisions.WithLabelValues(strconv.FormatBool(relevant)).Inc()
}

// ObserveResolution records which resolver answered and how long the cascade took.
func ObserveResolution(resolver string, elapsed time.Duration) {
	if resolver == "" {
		resolver = "none"
	}
	ResolverHits.WithLabelValues(resolver).Inc()
	ResolveDuration.Observe(elapsed.Seconds())
}

// ObserveLLM records one backend call.
func ObserveLLM(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LLMRequests.WithLabelValues(provider, outcome).Inc()
}

// ObserveReply records the structure kind of an assistant reply.
func ObserveReply(kind string) {
	StructuredReplies.WithLabelValues(kind).Inc()
}
