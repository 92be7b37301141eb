// Package ws carries realtime events to browsers over WebSocket.
//
// A connection authenticates with the same bearer token as the REST API,
// passed in the Authorization header or the token query parameter. It then
// registers its user and subscribes to the orders it displays. Every event
// the hub queues for the connection is written by a single writer goroutine
// in queue order.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ordering/internal/adapters/in/auth"
	"ordering/internal/adapters/out/realtime"
	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	replyQueueSize = 16
)

var errNotRegistered = errors.New("connection is not registered")

// OrderReader checks that the caller may see an order before it subscribes.
type OrderReader interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
}

// Heartbeater refreshes the edit lock held by a user.
type Heartbeater interface {
	Heartbeat(orderID, userID kernel.UUID) (editlock.Lock, error)
}

type Handler struct {
	hub      *realtime.Hub
	tokens   *auth.TokenParser
	orders   OrderReader
	locks    Heartbeater
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler builds the WebSocket endpoint. checkOrigin may be nil to accept
// same-origin requests only.
func NewHandler(
	hub *realtime.Hub,
	tokens *auth.TokenParser,
	orders OrderReader,
	locks Heartbeater,
	checkOrigin func(r *http.Request) bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		hub:    hub,
		tokens: tokens,
		orders: orders,
		locks:  locks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger.With("component", "ws_handler"),
	}
}

// connection is the state of one socket. client, once set, is owned by the
// read loop; the writer learns about it through attach.
type connection struct {
	ws      *websocket.Conn
	caller  actor.Actor
	client  *realtime.Client
	replies chan realtime.Event
	attach  chan *realtime.Client
	done    chan struct{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.Header.Get("Authorization")
	if raw == "" {
		raw = r.URL.Query().Get("token")
	}
	caller, err := h.tokens.Parse(raw)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", slog.Any("error", err))
		return
	}

	c := &connection{
		ws:      socket,
		caller:  caller,
		replies: make(chan realtime.Event, replyQueueSize),
		attach:  make(chan *realtime.Client),
		done:    make(chan struct{}),
	}

	go h.writePump(c)
	h.readPump(context.WithoutCancel(r.Context()), c)
}

// readPump handles client messages until the socket fails, then releases
// the registration so the writer drains and stops.
func (h *Handler) readPump(ctx context.Context, c *connection) {
	defer func() {
		if c.client != nil {
			h.hub.Unregister(c.client)
		}
		close(c.replies)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("connection closed", slog.Any("error", err))
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			h.reply(c, fail("", errors.New("malformed message")))
			continue
		}

		h.reply(c, h.dispatch(ctx, c, msg))
	}
}

func (h *Handler) dispatch(ctx context.Context, c *connection, msg Message) realtime.Event {
	switch msg.Type {
	case MessageRegister:
		return h.register(c, msg)
	case MessageSubscribeToOrder:
		return h.subscribeToOrder(ctx, c, msg)
	case MessageUnsubscribeFromOrder:
		return h.unsubscribeFromOrder(c, msg)
	case MessageSubscribeToCompany:
		return h.subscribeToCompany(c, msg)
	case MessageHeartbeat:
		return h.heartbeat(c, msg)
	default:
		return fail(msg.Type, fmt.Errorf("unknown message type %q", msg.Type))
	}
}

func (h *Handler) register(c *connection, msg Message) realtime.Event {
	userID, err := kernel.UUIDFromString(msg.UserID)
	if err != nil {
		return fail(msg.Type, err)
	}
	if userID != c.caller.ID() {
		return fail(msg.Type, errors.New("userId does not match the token"))
	}
	if c.client != nil {
		return ack(msg.Type, "", "")
	}

	client := h.hub.Register(userID, c.caller.CompanyID())
	select {
	case c.attach <- client:
	case <-c.done:
		h.hub.Unregister(client)
		return fail(msg.Type, errors.New("connection closed"))
	}
	c.client = client

	return ack(msg.Type, "", "")
}

func (h *Handler) subscribeToOrder(ctx context.Context, c *connection, msg Message) realtime.Event {
	if c.client == nil {
		return fail(msg.Type, errNotRegistered)
	}
	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		return fail(msg.Type, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, c.caller)
	if err != nil {
		return fail(msg.Type, err)
	}
	if _, err = h.orders.Handle(ctx, query); err != nil {
		return fail(msg.Type, err)
	}

	h.hub.Subscribe(c.client, orderID)
	return ack(msg.Type, orderID.String(), "")
}

func (h *Handler) unsubscribeFromOrder(c *connection, msg Message) realtime.Event {
	if c.client == nil {
		return fail(msg.Type, errNotRegistered)
	}
	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		return fail(msg.Type, err)
	}

	h.hub.Unsubscribe(c.client, orderID)
	return ack(msg.Type, orderID.String(), "")
}

// subscribeToCompany lets internal users follow a company's list view.
// Client users are placed in their own company channel on register.
func (h *Handler) subscribeToCompany(c *connection, msg Message) realtime.Event {
	if c.client == nil {
		return fail(msg.Type, errNotRegistered)
	}
	companyID, err := kernel.UUIDFromString(msg.CompanyID)
	if err != nil {
		return fail(msg.Type, err)
	}
	if !c.caller.CanSee(companyID) {
		return fail(msg.Type, errors.New("company is not visible"))
	}

	h.hub.SubscribeToCompany(c.client, companyID)
	return ack(msg.Type, "", companyID.String())
}

func (h *Handler) heartbeat(c *connection, msg Message) realtime.Event {
	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		return fail(msg.Type, err)
	}
	if _, err = h.locks.Heartbeat(orderID, c.caller.ID()); err != nil {
		return fail(msg.Type, err)
	}
	return ack(msg.Type, orderID.String(), "")
}

func (h *Handler) reply(c *connection, event realtime.Event) {
	select {
	case c.replies <- event:
	case <-c.done:
	}
}

// writePump is the only writer of the socket. It stops when the read loop
// closes replies, when the hub closes the client queue or on a write error.
func (h *Handler) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		_ = c.ws.Close()
	}()

	var events <-chan realtime.Event
	for {
		select {
		case client := <-c.attach:
			events = client.Events()
		case event, ok := <-c.replies:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			if !h.write(c, event) {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if !h.write(c, event) {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) write(c *connection, event realtime.Event) bool {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(event); err != nil {
		h.logger.Debug("write failed", slog.String("user_id", c.caller.ID().String()), slog.Any("error", err))
		return false
	}
	return true
}

func ack(action, orderID, companyID string) realtime.Event {
	return realtime.Event{
		Type:    EventAck,
		Payload: AckPayload{Action: action, OrderID: orderID, CompanyID: companyID},
	}
}

func fail(action string, err error) realtime.Event {
	return realtime.Event{
		Type:    EventError,
		Payload: ErrorPayload{Action: action, Message: err.Error()},
	}
}
