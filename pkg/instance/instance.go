package instance

import (
	"os"

	"github.com/angelmondragon/jewelmart-backend/pkg/env"
)

// GetID identifies this worker process in logs. Falls back to the hostname,
// then to "worker-0".
func GetID() string {
	if id := env.Get(env.InstanceID, ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
