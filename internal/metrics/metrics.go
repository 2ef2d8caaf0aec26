package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Standard Prometheus collectors for the analysis service
var (
	// radar_analyses_total{kind=chat|repo}
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_analyses_total",
		Help: "Total number of completed analyses by kind",
	}, []string{"kind"})

	// radar_risk_band{kind,band=high|moderate|low}
	RiskBand = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_risk_band",
		Help: "Risk band of merged analysis verdicts",
	}, []string{"kind", "band"})

	// radar_llm_calls_total{provider,outcome}
	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_llm_calls_total",
		Help: "LLM gateway round-trips by provider and outcome",
	}, []string{"provider", "outcome"})

	// radar_request_duration_seconds
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "radar_request_duration_seconds",
		Help:    "HTTP request processing latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "status"})
)

// RecordAnalysis increments the analysis counters for one merged verdict.
func RecordAnalysis(kind string, riskScore int) {
	AnalysesTotal.WithLabelValues(kind).Inc()
	RiskBand.WithLabelValues(kind, band(riskScore)).Inc()
}

// RecordLLMCall increments the gateway counter.
func RecordLLMCall(provider, outcome string) {
	LLMCalls.WithLabelValues(provider, outcome).Inc()
}

func band(score int) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "moderate"
	}
	return "low"
}
