package resilience

import "time"

// RetryFromConfig builds the provider retry policy. retries is the number of
// extra attempts after the first; negative values disable retrying.
func RetryFromConfig(retries int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = 1 + max(retries, 0)
	return cfg
}

// BreakerFromConfig builds a circuit breaker config, keeping defaults for
// non-positive values.
func BreakerFromConfig(failureThreshold, resetTimeoutSecs int) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	if failureThreshold > 0 {
		cfg.FailureThreshold = failureThreshold
	}
	if resetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(resetTimeoutSecs) * time.Second
	}
	return cfg
}
