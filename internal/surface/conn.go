package surface

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/protocol"
)

const writeWait = 10 * time.Second

// Conn is a Surface over a websocket. The same type serves both ends: the
// host wraps upgraded connections, panels wrap dialed ones.
type Conn struct {
	kind     Kind
	ws       *websocket.Conn
	writeMu  sync.Mutex
	messages chan protocol.Message
	done     chan struct{}
	once     sync.Once
	logger   *zap.Logger
}

func NewConn(kind Kind, ws *websocket.Conn, logger *zap.Logger) *Conn {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Conn{
		kind:     kind,
		ws:       ws,
		messages: make(chan protocol.Message, 16),
		done:     make(chan struct{}),
		logger:   logger.With(zap.String("surface", string(kind))),
	}
	go c.readLoop()
	return c
}

// Dial attaches to a host at baseURL (http://host:port) as the given kind
func Dial(ctx context.Context, baseURL string, kind Kind, logger *zap.Logger) (*Conn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse host address: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/surface/" + string(kind)

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("attach to host at %s: %w", u.String(), err)
	}
	return NewConn(kind, ws, logger), nil
}

func (c *Conn) Kind() Kind {
	return c.kind
}

func (c *Conn) Post(msg protocol.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("post %s: %w", msg.Command(), err)
	}
	return nil
}

func (c *Conn) Reveal(preserveFocus bool) error {
	return c.Post(protocol.Reveal{PreserveFocus: preserveFocus})
}

func (c *Conn) Messages() <-chan protocol.Message {
	return c.messages
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) readLoop() {
	defer close(c.messages)
	defer c.Close()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Debug("surface read ended", zap.Error(err))
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// Malformed and untagged messages are dropped
			c.logger.Debug("dropping surface message", zap.Error(err))
			continue
		}

		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}
