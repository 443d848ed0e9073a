package feed

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

// Server pushes each new frame of a call to connected UI clients over a
// websocket. This is presentation fan-out only; media signaling lives
// elsewhere.
type Server struct {
	calls        ports.CallService
	pingInterval time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	logger       *zap.SugaredLogger
}

func NewServer(calls ports.CallService, pingInterval, writeTimeout time.Duration, logger *zap.SugaredLogger) *Server {
	return &Server{
		calls:        calls,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleFeed upgrades the request and streams frames until the client
// disconnects. Slow clients skip frames rather than stall the grid.
func (s *Server) HandleFeed(c *gin.Context) {
	callID := domain.CallID(c.Param("id"))

	initial, err := s.calls.Frame(c.Request.Context(), callID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}

	frames := make(chan domain.Frame, 8)
	cancel, err := s.calls.Subscribe(callID, func(frame domain.Frame) {
		select {
		case frames <- frame:
		default:
		}
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	defer cancel()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed",
			"call_id", callID,
			"error", err,
		)
		return
	}
	defer conn.Close()

	s.logger.Infow("feed client connected",
		"call_id", callID,
		"remote_addr", conn.RemoteAddr().String(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.writeFrame(conn, initial); err != nil {
		return
	}

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case frame := <-frames:
			if err := s.writeFrame(conn, frame); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, frame domain.Frame) error {
	conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		s.logger.Debugw("feed write failed",
			"remote_addr", conn.RemoteAddr().String(),
			"error", err,
		)
		return err
	}
	return nil
}
