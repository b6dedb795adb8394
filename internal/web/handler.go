package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"manamate/internal/transport"
	"manamate/internal/workspace"
)

// StatusProvider reports the bot's state.
type StatusProvider interface {
	Ready() bool
	Handled() int64
	Uptime() time.Duration
}

// Handler holds dependencies for the status and pairing pages.
type Handler struct {
	name    string
	pairing *transport.PairingCell
	status  StatusProvider
	ws      *workspace.Manager
	logger  *log.Logger

	qrMu   sync.Mutex
	qrCode string
	qrPNG  []byte
}

// New creates a Handler. The workspace holds the QR writer's scratch files.
func New(name string, pairing *transport.PairingCell, status StatusProvider, ws *workspace.Manager, logger *log.Logger) *Handler {
	return &Handler{
		name:    name,
		pairing: pairing,
		status:  status,
		ws:      ws,
		logger:  logger.With("component", "web"),
	}
}

type statusResponse struct {
	Status        string  `json:"status"`
	Name          string  `json:"name"`
	Ready         bool    `json:"ready"`
	Pairing       bool    `json:"pairing"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Handled       int64   `json:"handled"`
}

// Status reports liveness and uptime as JSON.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	_, pairing := h.pairing.Get()
	uptime := h.status.Uptime()

	resp := statusResponse{
		Status:        "ok",
		Name:          h.name,
		Ready:         h.status.Ready(),
		Pairing:       pairing,
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Handled:       h.status.Handled(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("❌ failed to encode status", "err", err)
	}
}

// Live always answers OK while the process serves requests.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Ready answers OK once the transport is connected.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.status.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Transport not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
