package authapi

// Config bounds request handling for the auth endpoints.
type Config struct {
	// MaxBodyBytes caps request bodies before JSON decoding.
	MaxBodyBytes int64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes: 16 << 10,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	return c
}
