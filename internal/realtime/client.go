package realtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"storefront/internal/auth"
)

const maxFrameSize = 64 << 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one websocket connection. Frames are read and handled in order on the read
// loop; writes go through send, drained by the write loop.
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	principal *auth.Principal
}

func (h *Hub) newClient(conn *websocket.Conn, principal *auth.Principal) *Client {
	return &Client{
		id:        uuid.NewString(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, h.sendBuffer),
		principal: principal,
	}
}

// ServeWS upgrades the request and runs the connection until either side closes it. The
// principal placed on the context by the auth gate is attached to the connection.
func (h *Hub) ServeWS(c echo.Context) error {
	principal, _ := auth.PrincipalFrom(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return nil
	}

	client := h.newClient(conn, principal)
	h.register(client)

	fields := logrus.Fields{"client": client.id}
	if principal != nil {
		fields["user"] = principal.Email
	}
	h.log.WithFields(fields).Info("client connected")

	go client.writePump()
	client.readPump(context.WithoutCancel(c.Request().Context()))

	h.log.WithFields(fields).Info("client disconnected")
	return nil
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxFrameSize)

	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.WithError(err).WithField("client", c.id).Debug("websocket read")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.hub.Dispatch(ctx, c, raw)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
