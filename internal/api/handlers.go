package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/radusuciu/pyteomics/core/mzxml"
	"github.com/radusuciu/pyteomics/internal/cache"
	"github.com/radusuciu/pyteomics/internal/fileutil"
)

const serverVersion = "0.1.0"

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	File    string `json:"file"`
}

// DocumentInfo is the /api/info payload: the run header summary plus
// the source file digest.
type DocumentInfo struct {
	File   string          `json:"file"`
	Digest string          `json:"digest"`
	Info   *mzxml.FileInfo `json:"info"`
}

var startTime = time.Now()

// infoCache memoizes the /api/info payload per file. Spectrum documents
// are immutable once written, so a short TTL only bounds memory after a
// config change.
var infoCache = cache.New[string, DocumentInfo](time.Minute)

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "mstool scan API",
		"version": serverVersion,
		"file":    filepath.Base(ServerConfig.File),
		"endpoints": []string{
			"GET /health",
			"GET /api/info",
			"WS /api/scans",
		},
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	respond(w, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Version: serverVersion,
		Uptime:  time.Since(startTime).String(),
		File:    filepath.Base(ServerConfig.File),
	})
}

func handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	if cached, ok := infoCache.Get(ServerConfig.File); ok {
		respond(w, http.StatusOK, cached)
		return
	}

	info, err := mzxml.Info(ServerConfig.File)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "PARSE_ERROR", err.Error())
		return
	}
	digest, err := fileutil.Digest(ServerConfig.File)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DIGEST_ERROR", err.Error())
		return
	}

	doc := DocumentInfo{
		File:   ServerConfig.File,
		Digest: digest,
		Info:   info,
	}
	infoCache.Put(ServerConfig.File, doc)
	respond(w, http.StatusOK, doc)
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
