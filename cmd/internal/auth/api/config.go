package authapi

// DefaultPublicPaths are reachable without a bearer token.
// A trailing "/*" matches the prefix itself and anything below it.
var DefaultPublicPaths = []string{
	"/health/*",
	"/api/v1/authenticate",
	"/openapi.json",
	"/swagger/*",
	"/metrics",
}

// Config controls auth API behavior.
type Config struct {
	MaxBodyBytes int64
	PublicPaths  []string
}

// DefaultConfig returns safe defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes: 1 << 20, // 1 MiB
		PublicPaths:  append([]string(nil), DefaultPublicPaths...),
	}
}

func (c Config) normalized() Config {
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.PublicPaths == nil {
		c.PublicPaths = append([]string(nil), DefaultPublicPaths...)
	}
	return c
}
