// Package api provides the HTTP/WebSocket server for live scan
// inspection of a single spectrum document.
package api

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/radusuciu/pyteomics/internal/logging"
	"github.com/radusuciu/pyteomics/internal/validation"
)

// Start starts the API server with the given configuration. It blocks
// until the listener fails.
func Start(cfg Config) error {
	if cfg.File == "" {
		return fmt.Errorf("no document to serve")
	}
	kind, err := validation.Sniff(cfg.File)
	if err != nil {
		return fmt.Errorf("document not readable: %w", err)
	}
	if kind != validation.KindXML {
		return fmt.Errorf("%s is not an XML spectrum document (detected %s)", cfg.File, kind)
	}
	ServerConfig = cfg

	mux := setupRoutes()
	handler := logging.CombinedMiddleware(mux)

	logging.ServerStartup("scan_api", "http", addrPort(cfg.Addr),
		"websocket_protocol", "ws",
		"file", cfg.File)

	return http.ListenAndServe(cfg.Addr, handler)
}

// setupRoutes configures all HTTP routes.
func setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/api/info", handleInfo)
	mux.HandleFunc("/api/scans", handleScans)

	return mux
}

// addrPort extracts the numeric port from a listen address for the
// startup log. Unparseable addresses log as port 0.
func addrPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
