package handler

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"heritax/internal/bareme"
	"heritax/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the middleware chain
	},
}

const maxLiveFrameBytes = 4096

// Frame types pushed to live clients.
const (
	frameCatalog = "catalog"
	frameResult  = "result"
	frameError   = "error"
)

type catalogFrame struct {
	Type     string           `json:"type"`
	Profiles []bareme.Profile `json:"profiles"`
}

type resultFrame struct {
	Type   string                   `json:"type"`
	Result *domain.SimulationResult `json:"result"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Live serves the recompute-on-every-change WebSocket. The catalog is pushed
// on connect; afterwards each inbound SimulationInput frame yields exactly
// one outbound frame, either the freshly computed result or an error. No
// state survives between frames, so every estimate replaces the previous one
// wholesale.
func (h *SimulationHandler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	h.metrics.LiveSessionStarted()
	defer h.metrics.LiveSessionEnded()

	conn.SetReadLimit(maxLiveFrameBytes)

	h.logger.Info("Live session connected", map[string]interface{}{"remote": r.RemoteAddr})

	if err := writeFrame(conn, catalogFrame{Type: frameCatalog, Profiles: h.registry.Profiles()}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in domain.SimulationInput
		if err := json.Unmarshal(data, &in); err != nil {
			if writeFrame(conn, errorFrame{Type: frameError, Error: "invalid simulation payload"}) != nil {
				return
			}
			continue
		}

		start := time.Now()
		result, err := h.engine.Compute(in)
		if err != nil {
			h.metrics.IncrComputeError(computeErrorReason(err))
			if writeFrame(conn, errorFrame{Type: frameError, Error: err.Error()}) != nil {
				return
			}
			continue
		}

		h.metrics.RecordSimulation(result.RelationshipCategory, result.TransmissionType)
		h.metrics.RecordDuration("live_compute", time.Since(start))

		if writeFrame(conn, resultFrame{Type: frameResult, Result: result}) != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
