package env

import "os"

// Process-level variables read outside of config.Load, because they are
// needed before configuration is parsed.
const (
	Port       = "PORT"
	LogFormat  = "JEWELMART_LOG_FORMAT"
	InstanceID = "JEWELMART_INSTANCE_ID"
)

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
