// ABOUTME: Starter configuration written by `library-api init`
// ABOUTME: Secrets are referenced through environment variables, never written in clear

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Template is the starter YAML configuration.
const Template = `# library-api configuration
server:
  http_addr: "0.0.0.0:8000"
  read_header_timeout: "10s"
  shutdown_timeout: "10s"

database:
  driver: "sqlite"            # sqlite or postgres
  path: "library.db"          # sqlite only
  dsn: "${LIBRARY_DATABASE_DSN}"  # postgres only

auth:
  jwt_secret: "${LIBRARY_JWT_SECRET}"  # at least 32 bytes
  access_token_lifetime_min: 15
  refresh_token_lifetime_days: 30
  secure_cookies: false

library:
  books_limit_for_reader: 5

logging:
  level: "info"
  format: "text"

metrics:
  enabled: true
  path: "/metrics"
`

// WriteTemplate writes Template to path, creating parent directories.
// It refuses to overwrite an existing file unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
