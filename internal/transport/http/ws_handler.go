package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"minigame-service/internal/app"
	"minigame-service/internal/domain"
)

type WSHandler struct {
	service     *app.PlayService
	autoAdvance time.Duration
	upgrader    websocket.Upgrader
}

// NewWSHandler wires the play use cases to websocket clients. A positive autoAdvance
// moves past the feedback view on its own after that delay.
func NewWSHandler(service *app.PlayService, autoAdvance time.Duration) *WSHandler {
	return &WSHandler{
		service:     service,
		autoAdvance: autoAdvance,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	OptionID string `json:"optionId"`
}

type startPayload struct {
	ScreenID string `json:"screenId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// connection holds the per-socket state. Only the read loop touches playID.
type connection struct {
	h      *WSHandler
	ctx    context.Context
	send   chan outboundMessage[any]
	closed chan struct{}
	playID string
	cancel func()
}

// emit queues a message unless the connection is shutting down. It is safe to call
// from timer goroutines.
func (c *connection) emit(typ string, payload any) {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-c.closed:
	}
}

func (c *connection) fail(err error) {
	msg := err.Error()
	if errors.Is(err, domain.ErrPlayNotFound) {
		msg = "no active play; send start first"
	}
	c.emit("error", errorPayload{Message: msg})
}

// ServeWS upgrades HTTP requests to websockets and drives one play per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	screenID := r.URL.Query().Get("screenId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := &connection{
		h:      h,
		ctx:    r.Context(),
		send:   make(chan outboundMessage[any], 16),
		closed: make(chan struct{}),
	}
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-c.send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Warn("ws write error", "err", err)
					return
				}
			case <-c.closed:
				return
			}
		}
	}()

	if screenID != "" {
		c.start(screenID)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		c.handle(inbound)
	}

	c.leave()
	close(c.closed)
	<-writerDone
}

func (c *connection) handle(in inboundMessage) {
	svc := c.h.service
	switch in.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil || payload.ScreenID == "" {
			c.emit("error", errorPayload{Message: "invalid start payload"})
			return
		}
		c.start(payload.ScreenID)
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			c.emit("error", errorPayload{Message: "invalid select payload"})
			return
		}
		step, err := svc.Select(c.ctx, c.playID, payload.OptionID)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("view", step)
	case "confirm":
		step, err := svc.Confirm(c.ctx, c.playID)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("view", step)
		if step.Flash != nil {
			c.emit("flash", step.Flash)
		}
		if step.Applied && c.h.autoAdvance > 0 {
			c.scheduleAdvance()
		}
	case "advance":
		step, err := svc.Advance(c.ctx, c.playID)
		if err != nil {
			c.fail(err)
			return
		}
		c.publish(step)
	case "retry":
		step, err := svc.Retry(c.ctx, c.playID)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("view", step)
	default:
		c.emit("error", errorPayload{Message: "unsupported message type"})
	}
}

func (c *connection) start(screenID string) {
	c.leave()
	step, err := c.h.service.Start(c.ctx, screenID)
	if err != nil {
		c.fail(err)
		return
	}
	c.playID = step.PlayID
	c.emit("view", step)
}

func (c *connection) scheduleAdvance() {
	if c.cancel != nil {
		c.cancel()
	}
	cancel, err := c.h.service.AdvanceAfter(c.ctx, c.playID, c.h.autoAdvance, c.publish)
	if err != nil {
		c.fail(err)
		return
	}
	c.cancel = cancel
}

// publish sends the step and, when the run just ended, its outcome.
func (c *connection) publish(step app.Step) {
	c.emit("view", step)
	if step.Applied && step.Outcome != nil {
		c.emit("complete", step.Outcome)
	}
}

func (c *connection) leave() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.playID != "" {
		c.h.service.Leave(c.ctx, c.playID)
		c.playID = ""
	}
}
