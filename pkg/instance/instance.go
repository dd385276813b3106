package instance

import (
	"os"

	"github.com/angelmondragon/salesreport/pkg/config"
)

const fallbackID = "salesreport-0"

// GetID identifies this process: SALESREPORT_INSTANCE_ID, then the hostname.
func GetID() string {
	if id := os.Getenv(config.EnvInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
