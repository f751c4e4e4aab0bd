package httpgd

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// PushConn is an open push channel. ReadMessage blocks until the server sends
// a payload or the channel fails; Close may be called from any goroutine.
type PushConn interface {
	ReadMessage() ([]byte, error)
	Close() error
}

// OpenPush dials the push channel. The credential travels as a header on the
// upgrade request.
func (c *Client) OpenPush(ctx context.Context) (PushConn, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		header.Set(TokenHeader, c.token)
	}
	ws, resp, err := c.dialer.DialContext(ctx, c.pushURL.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial push channel: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial push channel: %w", err)
	}
	return &wsConn{ws: ws}, nil
}

type wsConn struct {
	ws        *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	for {
		messageType, message, err := w.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			return message, nil
		}
	}
}

func (w *wsConn) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.ws.Close()
	})
	return w.closeErr
}
