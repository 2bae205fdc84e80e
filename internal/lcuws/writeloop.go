package lcuws

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// writeLoop — единственный писатель в сокет. Команды обрабатываются по одной,
// в порядке очереди; Registry меняется только после успешной записи.
func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn) error {
	if c.pending != nil {
		cmd := *c.pending
		c.pending = nil
		if err := c.execute(conn, cmd); err != nil {
			return c.writeFailed(cmd, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-c.queue:
			if err := c.execute(conn, cmd); err != nil {
				return c.writeFailed(cmd, err)
			}
		}
	}
}

func (c *Client) execute(conn *websocket.Conn, cmd command) error {
	if err := c.writeFrame(conn, cmd.kind, cmd.topic); err != nil {
		return err
	}

	switch cmd.kind {
	case Subscribe:
		n := c.reg.Add(cmd.topic, cmd.cb)
		c.log.Debug("subscribed", "topic", cmd.topic, "callbacks", n)
	case Unsubscribe:
		n := c.reg.Remove(cmd.topic)
		c.log.Debug("unsubscribed", "topic", cmd.topic, "callbacks", n)
	}
	return nil
}

func (c *Client) writeFailed(cmd command, err error) error {
	c.pending = &cmd
	c.log.Error("write to lcu failed", "kind", cmd.kind, "topic", cmd.topic, "err", err)
	return fmt.Errorf("write %s %s: %w", cmd.kind, cmd.topic, err)
}
