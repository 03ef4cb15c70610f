package env

import "os"

// Prefix namespaces the service's own environment variables.
const Prefix = "NEBULA_"

// Get returns NEBULA_<key> when set, then the bare key, then fallback. The
// bare key covers variables set by the platform or shared tooling.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
