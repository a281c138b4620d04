package api

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string   // CORS and websocket origins (empty = allow all)
	Auth           AuthConfig // API key authentication
	Workers        int        // batch workers per job (0 = one per CPU)
	MaxBodyBytes   int64      // request body cap (0 = unlimited)
}

// DefaultMaxBodyBytes caps request bodies when the caller sets no limit.
const DefaultMaxBodyBytes = 8 << 20
