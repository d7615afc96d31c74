package api

// Config holds server configuration.
type Config struct {
	Addr string // listen address, e.g. ":8080"
	File string // spectrum document served by this instance
}

// ServerConfig is the active server configuration.
var ServerConfig Config
