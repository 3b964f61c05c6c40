package ws

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/claritty/internal/app"
	"github.com/GriffinCanCode/claritty/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/claritty/internal/monitor"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// DefaultMetricsInterval throttles metrics frames per connection.
	DefaultMetricsInterval = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware gates browsers
	},
}

// Publisher is the driving loop as seen by the stream.
type Publisher interface {
	View() app.View
	Subscribe() (<-chan app.View, func())
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetrics counts connections and frames.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithMetricsInterval sets how often metrics frames are sent.
func WithMetricsInterval(d time.Duration) Option {
	return func(h *Handler) { h.metricsInterval = d }
}

// WithSessionID is included in the greeting.
func WithSessionID(id string) Option {
	return func(h *Handler) { h.sessionID = id }
}

// Handler manages WebSocket connections
type Handler struct {
	publisher       Publisher
	metrics         *monitoring.Metrics
	metricsInterval time.Duration
	sessionID       string
	logger          *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(publisher Publisher, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		publisher:       publisher,
		metricsInterval: DefaultMetricsInterval,
		logger:          logger.Named("ws"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MetricsMessage is the JSON frame carrying a metrics sample.
type MetricsMessage struct {
	Type    string          `json:"type"`
	Tick    uint64          `json:"tick"`
	Metrics monitor.Metrics `json:"metrics"`
}

// SystemMessage is the greeting frame.
type SystemMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// HandleConnection handles WebSocket upgrade and streams until the client leaves.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	updates, unsubscribe := h.publisher.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	h.logger.Debug("Stream client connected", zap.String("remote", c.Request.RemoteAddr))
	defer h.logger.Debug("Stream client disconnected", zap.String("remote", c.Request.RemoteAddr))

	s := &stream{conn: conn, handler: h}
	if err := s.greet(); err != nil {
		return
	}
	// Catch up with what was written before the client arrived.
	if err := s.push(h.publisher.View(), true); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case v := <-updates:
			if err := s.push(v, false); err != nil {
				h.logger.Debug("Stream write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := s.control(websocket.PingMessage); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and notices disconnects.
func (h *Handler) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// stream tracks what one connection has already been sent. Only the
// HandleConnection goroutine writes to conn.
type stream struct {
	conn        *websocket.Conn
	handler     *Handler
	sent        int
	lastMetrics time.Time
}

func (s *stream) greet() error {
	return s.writeJSON("system", SystemMessage{
		Type:      "system",
		Message:   "Connected to claritty",
		SessionID: s.handler.sessionID,
	})
}

func (s *stream) push(v app.View, force bool) error {
	if len(v.Bytes) > s.sent {
		if err := s.write(websocket.BinaryMessage, v.Bytes[s.sent:]); err != nil {
			return err
		}
		s.handler.record("output")
		s.sent = len(v.Bytes)
	}

	if v.Tick == 0 {
		return nil
	}
	now := time.Now()
	if !force && now.Sub(s.lastMetrics) < s.handler.metricsInterval {
		return nil
	}
	s.lastMetrics = now
	return s.writeJSON("metrics", MetricsMessage{Type: "metrics", Tick: v.Tick, Metrics: v.Metrics})
}

func (s *stream) write(messageType int, data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

func (s *stream) writeJSON(kind string, msg any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		return err
	}
	s.handler.record(kind)
	return nil
}

func (s *stream) control(messageType int) error {
	return s.conn.WriteControl(messageType, nil, time.Now().Add(writeWait))
}

func (h *Handler) record(kind string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(kind)
	}
}
