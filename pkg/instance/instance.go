// Package instance names the running process in logs.
package instance

import (
	"os"

	"github.com/edelguur/admin-backend/pkg/env"
)

// ID returns EDELGUUR_INSTANCE_ID, falling back to the host name and then "local".
func ID() string {
	if id := env.Get("EDELGUUR_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
