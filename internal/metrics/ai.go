package metrics

import "time"

// AIRequestCompleted records a successful provider call.
func AIRequestCompleted(feature string, duration time.Duration, inputTokens, outputTokens int) {
	AIRequestsTotal.WithLabelValues(feature, "success").Inc()
	AIRequestDuration.WithLabelValues(feature).Observe(duration.Seconds())
	if inputTokens > 0 {
		AITokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		AITokensTotal.WithLabelValues("output").Add(float64(outputTokens))
	}
}

// AIRequestFailed records a failed provider call.
func AIRequestFailed(feature string, duration time.Duration) {
	AIRequestsTotal.WithLabelValues(feature, "error").Inc()
	AIRequestDuration.WithLabelValues(feature).Observe(duration.Seconds())
}

// AIRequestRejected records a call short-circuited by the breaker.
func AIRequestRejected(feature string) {
	AIRequestsTotal.WithLabelValues(feature, "rejected").Inc()
}

// BreakerOpened and BreakerClosed track the provider breaker state.
func BreakerOpened() { AIBreakerState.Set(1) }
func BreakerClosed() { AIBreakerState.Set(0) }
