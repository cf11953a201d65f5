// Package realtime relays chat messages and product list updates over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

const defaultSendBuffer = 32

// Recorder receives hub activity for metrics.
type Recorder interface {
	ConnectionOpened()
	ConnectionClosed()
	EventHandled(event, outcome string)
	ClientDropped()
}

type nopRecorder struct{}

func (nopRecorder) ConnectionOpened() {}
func (nopRecorder) ConnectionClosed() {}
func (nopRecorder) EventHandled(string, string) {}
func (nopRecorder) ClientDropped() {}

// Hub is the process-wide set of live connections. Delivery is at-most-once: a client
// whose send buffer is full is dropped instead of blocking the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	products service.ProductService
	chat     service.ChatService
	validate *validator.Validate
	log      *logrus.Logger
	metrics  Recorder

	sendBuffer int
}

// NewHub creates an empty hub. rec may be nil.
func NewHub(products service.ProductService, chat service.ChatService, log *logrus.Logger, rec Recorder) *Hub {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		products:   products,
		chat:       chat,
		validate:   apperrors.NewValidator(),
		log:        log,
		metrics:    rec,
		sendBuffer: defaultSendBuffer,
	}
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.ConnectionOpened()
}

// unregister removes c and closes its send channel. Safe to call more than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
	h.metrics.ConnectionClosed()
}

// broadcast queues frame for every client.
func (h *Hub) broadcast(frame []byte) {
	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.WithField("client", c.id).Warn("send buffer full, dropping client")
		h.metrics.ClientDropped()
		h.unregister(c)
	}
}

// reply queues frame for c only.
func (h *Hub) reply(c *Client, frame []byte) {
	h.mu.RLock()
	_, ok := h.clients[c]
	full := false
	if ok {
		select {
		case c.send <- frame:
		default:
			full = true
		}
	}
	h.mu.RUnlock()

	if full {
		h.metrics.ClientDropped()
		h.unregister(c)
	}
}

func (h *Hub) emit(c *Client, event string, data interface{}) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("encode frame")
		return
	}
	if c == nil {
		h.broadcast(frame)
		return
	}
	h.reply(c, frame)
}

// PublishProducts broadcasts the current catalog to every connection.
func (h *Hub) PublishProducts(ctx context.Context) error {
	list, err := h.products.ListAll(ctx)
	if err != nil {
		return err
	}
	h.emit(nil, EventProducts, list)
	return nil
}

// Dispatch handles one inbound frame from c. Failures go back to c as an error frame; a
// panicking handler is recovered and reported the same way.
func (h *Hub) Dispatch(ctx context.Context, c *Client, raw []byte) {
	event := "unknown"
	defer func() {
		if r := recover(); r != nil {
			h.log.WithFields(logrus.Fields{"event": event, "panic": r}).Error("realtime handler panicked")
			h.metrics.EventHandled(eventLabel(event), "error")
			h.emit(c, EventError, ErrorDetail{Detail: "internal error"})
		}
	}()

	name, data, err := decodeFrame(raw)
	if err == nil {
		event = name
		err = h.handle(ctx, c, name, data)
	}
	if err != nil {
		h.fail(c, event, err)
		return
	}
	h.metrics.EventHandled(eventLabel(event), "ok")
}

// eventLabel bounds the metric label set to the known inbound events.
func eventLabel(event string) string {
	switch event {
	case EventNewMessage, EventDeleteProduct, EventAddProduct:
		return event
	default:
		return "unknown"
	}
}

// publishAfterMutation broadcasts the catalog after a committed change. A failure is
// logged only; the change itself already succeeded.
func (h *Hub) publishAfterMutation(ctx context.Context, event string) {
	if err := h.PublishProducts(ctx); err != nil {
		h.log.WithError(err).WithField("event", event).Warn("broadcast products")
	}
}

func (h *Hub) handle(ctx context.Context, c *Client, event string, data gjson.Result) error {
	switch event {
	case EventNewMessage:
		return h.onNewMessage(ctx, c, unwrap(data))
	case EventDeleteProduct:
		return h.onDeleteProduct(ctx, c, data)
	case EventAddProduct:
		return h.onAddProduct(ctx, c, unwrap(data))
	default:
		return fmt.Errorf("%w: unknown event %q", apperrors.ErrChannel, event)
	}
}

// onNewMessage persists first; only a stored record is published.
func (h *Hub) onNewMessage(ctx context.Context, c *Client, data gjson.Result) error {
	user := sender(data)
	if c.principal != nil {
		user = c.principal.Email
	}
	msg, err := h.chat.Post(ctx, user, data.Get("message").String())
	if err != nil {
		return err
	}
	h.emit(nil, EventEmitMessage, msg)
	return nil
}

func (h *Hub) onDeleteProduct(ctx context.Context, c *Client, data gjson.Result) error {
	id, err := uuid.Parse(productID(data))
	if err != nil {
		return apperrors.NewValidationError("prodId", "uuid")
	}
	if err := h.products.Delete(ctx, id); err != nil {
		return err
	}
	h.publishAfterMutation(ctx, EventDeleteProduct)
	h.emit(c, EventResult, "product deleted")
	return nil
}

func (h *Hub) onAddProduct(ctx context.Context, c *Client, data gjson.Result) error {
	if !data.IsObject() {
		return apperrors.NewValidationError("product", "required")
	}
	var payload productPayload
	if err := json.Unmarshal([]byte(data.Raw), &payload); err != nil {
		return fmt.Errorf("%w: decode product: %v", apperrors.ErrChannel, err)
	}
	if err := h.validate.Struct(payload); err != nil {
		return apperrors.FromValidator(err)
	}
	if _, err := h.products.Create(ctx, payload.input()); err != nil {
		return err
	}
	h.publishAfterMutation(ctx, EventAddProduct)
	h.emit(c, EventResult, "product added")
	return nil
}

func (h *Hub) fail(c *Client, event string, err error) {
	h.metrics.EventHandled(eventLabel(event), "error")
	mapped := apperrors.MapErrorToHTTP(err)
	entry := h.log.WithFields(logrus.Fields{"event": event, "client": c.id})
	if mapped.StatusCode >= 500 {
		entry.WithError(err).Error("realtime event failed")
	} else {
		entry.WithError(err).Debug("realtime event rejected")
	}
	h.emit(c, EventError, ErrorDetail{Detail: mapped.Message})
}
