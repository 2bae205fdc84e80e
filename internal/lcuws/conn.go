package lcuws

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/EgorLis/teemo/internal/lcuhttp"
	"github.com/EgorLis/teemo/internal/topic"
)

// ========================= low-level =========================

// адрес wss по текущей конфигурации
func (c *Client) wsURL() string {
	return "wss://" + net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port)) + "/"
}

func (c *Client) dialer() *websocket.Dialer {
	return &websocket.Dialer{
		// только loopback, без системного прокси
		Proxy:            nil,
		HandshakeTimeout: c.cfg.HandshakeTimeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: c.cfg.InsecureSkipVerify, //nolint:gosec // самоподписанный сертификат LCU
		},
	}
}

// одна попытка рукопожатия.
// Upgrade/Connection/Sec-WebSocket-* gorilla выставляет сама.
func (c *Client) dialAndSetup(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", lcuhttp.BasicAuth(c.cfg.Token))

	conn, resp, err := c.dialer().DialContext(ctx, c.wsURL(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w (status %d)", err, resp.StatusCode)
		}
		return nil, err
	}
	conn.SetReadLimit(64 << 20)
	return conn, nil
}

// dial — рукопожатие с бесконечными повторами через RetryDelay.
// Возвращает ошибку только при отмене ctx.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	c.setState(Connecting)
	if c.OnConnecting != nil {
		c.OnConnecting()
	}

	for attempt := 1; ; attempt++ {
		conn, err := c.dialAndSetup(ctx)
		if err == nil {
			c.setState(Connected)
			c.log.Info("ws connected", "url", c.wsURL(), "attempt", attempt)
			if c.OnConnected != nil {
				c.OnConnected()
			}
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.log.Warn("ws handshake failed", "attempt", attempt, "retry_in", c.cfg.RetryDelay, "err", err)
		c.emitError(fmt.Errorf("handshake: %w", err))

		t := time.NewTimer(c.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// writeFrame — [code,"wireName"] в сокет. Вызывается только из одной горутины.
func (c *Client) writeFrame(conn *websocket.Conn, kind EventType, t string) error {
	frame, err := encodeCommand(kind, topic.Forward(t))
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// безопасно закрыть соединение; повторный вызов безвреден
func (c *Client) closeConn(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
		time.Now().Add(500*time.Millisecond))
	_ = conn.Close()
}
