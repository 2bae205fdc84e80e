package teemo

import (
	"context"
	"net/http"
	"reflect"
	"time"
)

const defaultPollEvery = time.Second

// PollLive — опрос Live Client Data API раз в every до отмены ctx.
// cb вызывается на первом ответе и затем только при изменении ответа.
// Ответы-ошибки (матч не идёт) пропускаются, снимок при этом сбрасывается.
func (t *Teemo) PollLive(ctx context.Context, path string, every time.Duration, cb func(any)) error {
	var (
		prev any
		have bool
	)
	return t.poll(ctx, every, func() {
		cur := t.LiveRequest(ctx, http.MethodGet, path, nil)
		if isErrorBody(cur) {
			have = false
			return
		}
		if have && reflect.DeepEqual(prev, cur) {
			return
		}
		prev, have = cur, true
		cb(cur)
	})
}

// WatchLiveEvents — новые события матча (liveclientdata/eventdata)
// по возрастанию EventID. Новый матч нумерует события заново.
func (t *Teemo) WatchLiveEvents(ctx context.Context, every time.Duration, cb func(map[string]any)) error {
	last := -1
	return t.poll(ctx, every, func() {
		res := t.LiveRequest(ctx, http.MethodGet, "liveclientdata/eventdata", nil)
		if isErrorBody(res) {
			return
		}
		events := liveEvents(res)
		if n := len(events); n > 0 && eventID(events[n-1]) < last {
			t.log.Info("live events restarted", "last", last)
			last = -1
		}
		for _, ev := range events {
			if id := eventID(ev); id > last {
				last = id
				cb(ev)
			}
		}
	})
}

// poll — тикер + немедленный первый вызов; возвращает ctx.Err().
func (t *Teemo) poll(ctx context.Context, every time.Duration, tick func()) error {
	if every <= 0 {
		every = defaultPollEvery
	}
	tk := time.NewTicker(every)
	defer tk.Stop()

	for {
		tick()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
		}
	}
}

func isErrorBody(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 2 {
		return false
	}
	_, code := m["code"]
	_, msg := m["message"]
	return code && msg
}

func liveEvents(v any) []map[string]any {
	m, _ := v.(map[string]any)
	raw, _ := m["Events"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if ev, ok := e.(map[string]any); ok {
			out = append(out, ev)
		}
	}
	return out
}

func eventID(ev map[string]any) int {
	id, ok := ev["EventID"].(float64)
	if !ok {
		return -1
	}
	return int(id)
}
