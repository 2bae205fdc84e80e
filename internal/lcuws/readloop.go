package lcuws

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		if isEmptyFrame(data) {
			continue
		}

		ev, err := decodeEvent(data)
		if err != nil {
			// битый фрейм не роняет цикл
			c.log.Warn("skip malformed frame", "size", len(data), "err", err)
			c.emitError(err)
			continue
		}
		c.dispatch(ev)
	}
}

// dispatch — колбэки топика по очереди, в порядке подписки.
func (c *Client) dispatch(ev Event) {
	cbs := c.reg.Lookup(ev.Topic)
	if len(cbs) == 0 {
		c.log.Debug("no subscribers, event dropped", "topic", ev.Topic, "type", ev.Type)
		return
	}
	if ev.Type != Update {
		c.log.Debug("unexpected event type", "topic", ev.Topic, "type", ev.Type)
	}
	for i, cb := range cbs {
		c.invoke(ev, i, cb)
	}
}

// invoke — каждому колбэку своя копия payload; паника не выходит наружу.
func (c *Client) invoke(ev Event, i int, cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("callback panicked", "topic", ev.Topic, "index", i, "panic", r)
			c.emitError(fmt.Errorf("callback %d for %s panicked: %v", i, ev.Topic, r))
		}
	}()
	cb(ev.Payload.AsMap())
}
