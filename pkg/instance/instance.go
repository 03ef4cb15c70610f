package instance

import "github.com/angelmondragon/nebulashop-backend/pkg/env"

// GetID returns the process instance identifier used in logs and event
// headers. NEBULA_INSTANCE_ID wins over the platform-provided DYNO.
func GetID() string {
	return env.Get("INSTANCE_ID", env.Get("DYNO", "local"))
}
