package authapi

// Metrics receives one observation per auth operation outcome. op is one of
// "register", "login", "refresh", "logout", "validate"; result is a short
// stable label such as "ok", "invalid_credentials" or "expired".
type Metrics interface {
	AuthResult(op, result string)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) AuthResult(string, string) {}
