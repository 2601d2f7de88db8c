package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsReadDeadline  = 60 * time.Second
	wsPingInterval  = 30 * time.Second
	wsWriteDeadline = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS enforcement happens on the HTTP endpoints; the socket
		// accepts any origin.
		return true
	},
}

// wsRequest is a classification request over the socket. Data is
// base64 in the JSON encoding.
type wsRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Filename  string `json:"filename"`
	Data      []byte `json:"data"`
}

// wsResponse reports progress and the final result.
type wsResponse struct {
	RequestID string            `json:"request_id,omitempty"`
	Status    string            `json:"status"` // "processing", "completed", "error"
	Result    *ClassifyResponse `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// classifyWebSocketHandler upgrades the connection and serves
// classification requests until the client disconnects.
func (s *Server) classifyWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.logger.Info("websocket connected", "remote_addr", r.RemoteAddr)
	s.serveWebSocket(r, conn)
}

func (s *Server) serveWebSocket(r *http.Request, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteDeadline)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("websocket read", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType != websocket.TextMessage {
			continue
		}
		s.handleWebSocketRequest(r, conn, data)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	}
}

func (s *Server) handleWebSocketRequest(r *http.Request, conn *websocket.Conn, data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeWebSocket(conn, wsResponse{Status: "error", Error: "invalid request"})
		return
	}
	if len(req.Data) == 0 || req.Filename == "" {
		s.writeWebSocket(conn, wsResponse{RequestID: req.RequestID, Status: "error", Error: "filename and data are required"})
		return
	}

	s.writeWebSocket(conn, wsResponse{RequestID: req.RequestID, Status: "processing"})

	result, err := s.pipeline.ClassifyBytes(r.Context(), req.Data, req.Filename)
	if err != nil {
		classifyRequestsTotal.WithLabelValues("error").Inc()
		s.writeWebSocket(conn, wsResponse{RequestID: req.RequestID, Status: "error", Error: err.Error()})
		return
	}
	classifyRequestsTotal.WithLabelValues("ok").Inc()
	documentsDetected.Observe(float64(result.IdentifiedDocuments()))

	s.writeWebSocket(conn, wsResponse{
		RequestID: req.RequestID,
		Status:    "completed",
		Result:    &ClassifyResponse{Success: true, Result: result},
	})
}

func (s *Server) writeWebSocket(conn *websocket.Conn, resp wsResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("websocket encode", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.logger.Error("websocket write", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
