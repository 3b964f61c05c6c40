package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/GriffinCanCode/claritty/internal/app"
	"github.com/GriffinCanCode/claritty/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/claritty/internal/terminal"
	"github.com/gin-gonic/gin"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

// ViewSource exposes the latest published view.
type ViewSource interface {
	View() app.View
}

// SessionInfo describes the shell session.
type SessionInfo interface {
	Info() terminal.SessionInfo
}

// Handlers contains all HTTP handlers
type Handlers struct {
	views   ViewSource
	session SessionInfo
	metrics *monitoring.Metrics
	started time.Time
}

// NewHandlers creates a new handler set. session and metrics may be nil.
func NewHandlers(views ViewSource, session SessionInfo, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		views:   views,
		session: session,
		metrics: metrics,
		started: time.Now(),
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "claritty",
		"version": Version,
	})
}

// Health reports the session and loop state.
func (h *Handlers) Health(c *gin.Context) {
	v := h.views.View()

	resp := gin.H{
		"status":         "healthy",
		"uptime_seconds": time.Since(h.started).Seconds(),
		"ticks":          v.Tick,
		"output_bytes":   len(v.Bytes),
		"drain":          v.Drain,
	}

	if h.session != nil {
		info := h.session.Info()
		resp["session"] = info
		if !info.Active {
			resp["status"] = "degraded"
		}
	}
	if h.metrics != nil {
		resp["counters"] = h.metrics.GetSnapshot()
	}

	c.JSON(http.StatusOK, resp)
}

// Output returns everything the shell has written so far. offset counts raw
// bytes with raw=1 and decoded text bytes otherwise; X-Output-Length and
// X-Text-Length advertise where to resume in each mode.
func (h *Handlers) Output(c *gin.Context) {
	offset, err := parseOffset(c.Query("offset"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v := h.views.View()
	c.Header("X-Output-Length", strconv.Itoa(len(v.Bytes)))

	if raw, _ := strconv.ParseBool(c.DefaultQuery("raw", "0")); raw {
		c.Data(http.StatusOK, "application/octet-stream", v.Bytes[min(offset, len(v.Bytes)):])
		return
	}

	c.Header("X-Text-Length", strconv.Itoa(len(v.Text)))
	text := v.Text[runeBoundary(v.Text, offset):]
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// CurrentMetrics returns the latest metrics sample.
func (h *Handlers) CurrentMetrics(c *gin.Context) {
	v := h.views.View()
	c.JSON(http.StatusOK, gin.H{
		"metrics": v.Metrics,
		"overlay": v.Metrics.Lines(),
		"tick":    v.Tick,
	})
}

// runeBoundary clamps off to s and moves it back to the start of the rune it
// falls inside.
func runeBoundary(s string, off int) int {
	off = min(off, len(s))
	for off > 0 && off < len(s) && !utf8.RuneStart(s[off]) {
		off--
	}
	return off
}

func parseOffset(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return n, nil
}
