package realtime

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/ports"
)

// DefaultQueueSize is the number of events a client may lag behind before
// new events to it are dropped.
const DefaultQueueSize = 64

type clientSet map[*Client]struct{}

// Client is one registered connection. Events arrive on Events in the order
// they were broadcast; the channel is closed when the client is unregistered.
type Client struct {
	userID    kernel.UUID
	companyID *kernel.UUID

	send    chan Event
	closed  bool
	orders  map[kernel.UUID]struct{}
	dropped atomic.Int64
}

func (c *Client) UserID() kernel.UUID     { return c.userID }
func (c *Client) Events() <-chan Event    { return c.send }
func (c *Client) Dropped() int64          { return c.dropped.Load() }
func (c *Client) CompanyID() *kernel.UUID { return c.companyID }

// Hub is the connection registry. All state is guarded by mu; broadcasts
// never block on a slow client.
type Hub struct {
	mu        sync.RWMutex
	byUser    map[kernel.UUID]clientSet
	byOrder   map[kernel.UUID]clientSet
	byCompany map[kernel.UUID]clientSet
	queueSize int
	logger    *slog.Logger
}

var _ ports.Notifier = (*Hub)(nil)

func NewHub(queueSize int, logger *slog.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		byUser:    make(map[kernel.UUID]clientSet),
		byOrder:   make(map[kernel.UUID]clientSet),
		byCompany: make(map[kernel.UUID]clientSet),
		queueSize: queueSize,
		logger:    logger.With("component", "realtime_hub"),
	}
}

// Register adds a connection for userID. A client user joins its company
// channel right away; internal users join company channels through
// SubscribeToCompany.
func (h *Hub) Register(userID kernel.UUID, companyID *kernel.UUID) *Client {
	c := &Client{
		userID:    userID,
		companyID: companyID,
		send:      make(chan Event, h.queueSize),
		orders:    make(map[kernel.UUID]struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	join(h.byUser, userID, c)
	if companyID != nil {
		join(h.byCompany, *companyID, c)
	}
	return c
}

// Unregister removes the client from every channel and closes its queue.
// Calling it twice is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	leave(h.byUser, c.userID, c)
	for orderID := range c.orders {
		leave(h.byOrder, orderID, c)
	}
	for companyID, members := range h.byCompany {
		if _, ok := members[c]; ok {
			leave(h.byCompany, companyID, c)
		}
	}
	close(c.send)
}

// Subscribe adds the client to the channel of orderID.
func (h *Hub) Subscribe(c *Client, orderID kernel.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}
	c.orders[orderID] = struct{}{}
	join(h.byOrder, orderID, c)
}

func (h *Hub) Unsubscribe(c *Client, orderID kernel.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(c.orders, orderID)
	leave(h.byOrder, orderID, c)
}

// SubscribeToCompany adds the client to a company's list channel.
func (h *Hub) SubscribeToCompany(c *Client, companyID kernel.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}
	join(h.byCompany, companyID, c)
}

func (h *Hub) BroadcastToUser(userID kernel.UUID, event Event) {
	h.deliver(event, h.byUser, userID)
}

func (h *Hub) BroadcastToOrder(orderID kernel.UUID, event Event) {
	h.deliver(event, h.byOrder, orderID)
}

func (h *Hub) BroadcastToCompany(companyID kernel.UUID, event Event) {
	h.deliver(event, h.byCompany, companyID)
}

// NotifyOrderUpdated sends the event once to every subscriber of the order
// and every member of the owning company's channel.
func (h *Hub) NotifyOrderUpdated(event ports.OrderUpdatedEvent) {
	h.fanOut(orderUpdated(event), event.OrderID, event.CompanyID)
}

func (h *Hub) NotifyEditingStatusChanged(event ports.EditingStatusChangedEvent) {
	h.fanOut(editingStatusChanged(event), event.OrderID, event.CompanyID)
}

// Stats returns the number of connected clients and of order channels.
func (h *Hub) Stats() (clients, orders int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, set := range h.byUser {
		clients += len(set)
	}
	return clients, len(h.byOrder)
}

func (h *Hub) fanOut(event Event, orderID, companyID kernel.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(clientSet, len(h.byOrder[orderID])+len(h.byCompany[companyID]))
	for c := range h.byOrder[orderID] {
		seen[c] = struct{}{}
	}
	for c := range h.byCompany[companyID] {
		seen[c] = struct{}{}
	}
	for c := range seen {
		h.offer(c, event)
	}
}

func (h *Hub) deliver(event Event, channels map[kernel.UUID]clientSet, key kernel.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range channels[key] {
		h.offer(c, event)
	}
}

// offer must be called with mu held; Unregister closes send under the write lock.
func (h *Hub) offer(c *Client, event Event) {
	select {
	case c.send <- event:
	default:
		c.dropped.Add(1)
		h.logger.Warn("Client queue full, event dropped",
			"user_id", c.userID.String(),
			"event", event.Type)
	}
}

func join(channels map[kernel.UUID]clientSet, key kernel.UUID, c *Client) {
	set, ok := channels[key]
	if !ok {
		set = make(clientSet)
		channels[key] = set
	}
	set[c] = struct{}{}
}

func leave(channels map[kernel.UUID]clientSet, key kernel.UUID, c *Client) {
	set, ok := channels[key]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(channels, key)
	}
}
