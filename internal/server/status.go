package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StatusMessage is pushed to status feed subscribers on every tick.
type StatusMessage struct {
	Time   time.Time      `json:"time"`
	Status *device.Status `json:"status,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// handleStatusFeed pushes device status immediately and then every interval
// until the client goes away or the server stops.
func (s *Server) handleStatusFeed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("status feed upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reading is only needed to observe close frames and disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Debug("status feed subscribed", "remote", r.RemoteAddr)
	defer s.logger.Debug("status feed closed", "remote", r.RemoteAddr)

	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()

	for {
		if err := s.pushStatus(ctx, conn); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) pushStatus(ctx context.Context, conn *websocket.Conn) error {
	msg := StatusMessage{Time: time.Now().UTC()}
	st, err := s.device.Status(ctx)
	if err != nil {
		msg.Error = err.Error()
	} else {
		msg.Status = &st
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
