package api

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/radusuciu/pyteomics/core/mzxml"
	"github.com/radusuciu/pyteomics/internal/logging"
)

const writeWait = 10 * time.Second

// upgrader accepts all origins. The server is a local inspection tool
// and carries no credentials worth protecting cross-origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ScanFrame is one message on the scan stream.
type ScanFrame struct {
	Type    string      `json:"type"` // "hello", "scan", "error", "complete"
	Session string      `json:"session,omitempty"`
	File    string      `json:"file,omitempty"`
	Num     string      `json:"num,omitempty"`
	Message string      `json:"message,omitempty"`
	Scans   int         `json:"scans,omitempty"`
	Data    *mzxml.Scan `json:"data,omitempty"`
}

var (
	sessionsMu sync.Mutex
	sessions   = make(map[string]*websocket.Conn)
)

func registerSession(id string, conn *websocket.Conn) {
	sessionsMu.Lock()
	sessions[id] = conn
	n := len(sessions)
	sessionsMu.Unlock()
	logging.WebSocketEvent("client_connected", n, "session", id)
}

func unregisterSession(id string) {
	sessionsMu.Lock()
	delete(sessions, id)
	n := len(sessions)
	sessionsMu.Unlock()
	logging.WebSocketEvent("client_disconnected", n, "session", id)
}

// handleScans upgrades the connection and streams every reassembled
// scan in the served document as one JSON frame. Decoded peak arrays
// are included only when the request carries peaks=1.
func handleScans(w http.ResponseWriter, r *http.Request) {
	includePeaks := r.URL.Query().Get("peaks") == "1"

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.New().String()
	registerSession(id, conn)
	defer unregisterSession(id)

	// Reads are discarded; a failed read means the client went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeFrame(conn, ScanFrame{Type: "hello", Session: id, File: ServerConfig.File}); err != nil {
		return
	}

	reader, err := mzxml.Open(ServerConfig.File)
	if err != nil {
		writeFrame(conn, ScanFrame{Type: "error", Message: err.Error()})
		return
	}
	defer reader.Close()

	count := 0
	for {
		select {
		case <-done:
			return
		default:
		}

		s, err := reader.Next()
		if err == io.EOF {
			writeFrame(conn, ScanFrame{Type: "complete", Scans: count})
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
		if err != nil {
			var derr *mzxml.DecodeError
			if errors.As(err, &derr) {
				logging.DecodeFailure(ServerConfig.File, derr.ScanID, err, "session", id)
				if werr := writeFrame(conn, ScanFrame{Type: "error", Num: derr.ScanID, Message: err.Error()}); werr != nil {
					return
				}
				continue
			}
			writeFrame(conn, ScanFrame{Type: "error", Message: err.Error()})
			return
		}

		if err := writeFrame(conn, ScanFrame{Type: "scan", Num: s.Num, Data: frameScan(s, includePeaks)}); err != nil {
			return
		}
		count++
	}
}

// frameScan strips decoded arrays from the wire copy unless requested.
func frameScan(s *mzxml.Scan, includePeaks bool) *mzxml.Scan {
	if includePeaks {
		return s
	}
	trimmed := *s
	trimmed.MzArray = nil
	trimmed.IntensityArray = nil
	return &trimmed
}

func writeFrame(conn *websocket.Conn, f ScanFrame) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}
