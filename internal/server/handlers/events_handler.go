package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/service/dashboard"
	"github.com/mamadbah2/herdboard/pkg/broadcast"
)

// Event names sent on the stream.
const (
	EventAnimals = "animals"
	EventStats   = "stats"
	EventReport  = "report"
	EventLoading = "loading"
	EventError   = "error"
)

const eventBuffer = 64

type event struct {
	name string
	data any
}

// EventsHandler relays the dashboard broadcast channels as server-sent events.
type EventsHandler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

// NewEventsHandler constructs the SSE handler.
func NewEventsHandler(svc *dashboard.Service, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{svc: svc, logger: logger}
}

// Register mounts the event stream on rg.
func (h *EventsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/events", h.Stream)
}

// Stream holds the connection open and writes one event per broadcast value.
// Events are dropped for a client that falls eventBuffer events behind.
func (h *EventsHandler) Stream(c *gin.Context) {
	events := make(chan event, eventBuffer)
	ctx := c.Request.Context()

	var dropped atomic.Int64
	push := func(name string) func(any) {
		return func(v any) {
			select {
			case events <- event{name: name, data: v}:
			default:
				dropped.Add(1)
			}
		}
	}

	unsubscribers := []func(){
		relay(h.svc.Animals(), push(EventAnimals)),
		relay(h.svc.Stats(), push(EventStats)),
		relay(h.svc.Reports(), push(EventReport)),
		relay(h.svc.Loading(), push(EventLoading)),
		relay(h.svc.Errors(), push(EventError)),
	}
	defer func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
		if n := dropped.Load(); n > 0 {
			h.logger.Warn("slow event subscriber", zap.Int64("dropped", n))
		}
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			c.SSEvent(ev.name, ev.data)
			c.Writer.Flush()
		}
	}
}

func relay[T any](src broadcast.Source[T], fn func(any)) func() {
	return src.Subscribe(func(v T) { fn(v) })
}
