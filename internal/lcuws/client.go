package lcuws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrClosed         = errors.New("lcuws: session closed")
	ErrNilCallback    = errors.New("lcuws: nil callback")
	ErrAlreadyStarted = errors.New("lcuws: already connected")
)

const (
	defaultRetryDelay = 500 * time.Millisecond
	defaultQueueSize  = 100
	writeWait         = 5 * time.Second
)

type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "disconnected"
	}
}

type Config struct {
	Host  string
	Port  int
	Token string

	RetryDelay time.Duration
	// 0 = без таймаута
	HandshakeTimeout time.Duration
	QueueSize        int

	// InsecureSkipVerify — принять самоподписанный сертификат LCU.
	InsecureSkipVerify bool
	// AutoReconnect — после обрыва переподключиться и заново подписаться на все топики.
	AutoReconnect bool

	Logger *slog.Logger
}

type command struct {
	kind  EventType
	topic string
	cb    Callback
}

// Client — одна сессия WebSocket к LCU: writer (очередь команд) и
// dispatcher (входящие события) поверх общего Registry.
type Client struct {
	cfg   Config
	id    string
	log   *slog.Logger
	reg   *Registry
	queue chan command
	state atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool

	doneOnce sync.Once
	done     chan struct{}
	errMu    sync.Mutex
	err      error

	// команда, запись которой сорвалась; повторяется после реконнекта.
	// Трогают только writer и supervisor, строго по очереди.
	pending *command

	// "События"
	OnConnecting   func()
	OnConnected    func()
	OnDisconnected func(error)
	OnError        func(error)
}

func New(cfg Config) *Client {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		cfg:    cfg,
		id:     id,
		log:    logger.With("session", id),
		reg:    NewRegistry(),
		queue:  make(chan command, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Connect — рукопожатие (с бесконечными повторами) и запуск writer/dispatcher.
// ctx ограничивает только ожидание рукопожатия; сессия живёт до Close.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.wg.Add(1)
	c.mu.Unlock()

	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	conn, err := c.dial(dctx)
	if err != nil {
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		c.setState(Disconnected)
		c.wg.Done()
		if c.ctx.Err() != nil {
			return ErrClosed
		}
		return err
	}

	go c.run(conn)
	return nil
}

// Subscribe — поставить подписку в очередь. Колбэк начнёт получать события
// только после того, как фрейм подписки уйдёт в сокет.
// Блокируется, если очередь заполнена.
func (c *Client) Subscribe(ctx context.Context, topic string, cb Callback) error {
	if cb == nil {
		return ErrNilCallback
	}
	return c.enqueue(ctx, command{kind: Subscribe, topic: topic, cb: cb})
}

// Unsubscribe — снять все колбэки топика.
func (c *Client) Unsubscribe(ctx context.Context, topic string) error {
	return c.enqueue(ctx, command{kind: Unsubscribe, topic: topic})
}

func (c *Client) enqueue(ctx context.Context, cmd command) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.queue <- cmd:
		return nil
	case <-c.done:
		return ErrClosed
	case <-c.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close — остановить сессию и дождаться фоновых горутин, в том числе
// колбэка, который выполняется прямо сейчас: зависший колбэк держит Close.
// Нельзя вызывать из колбэка или OnDisconnected: это взаимоблокировка.
func (c *Client) Close() {
	c.cancel()
	c.wg.Wait()
	c.markDone(nil, false)
}

// Done закрывается, когда сессия завершилась (Close или фатальная ошибка).
func (c *Client) Done() <-chan struct{} { return c.done }

// Err — причина фатального завершения; nil, если сессия закрыта через Close.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Client) ID() string { return c.id }

func (c *Client) State() State { return State(c.state.Load()) }

func (c *Client) Subscribed(topic string) bool { return c.reg.Has(topic) }

func (c *Client) Topics() []string { return c.reg.Topics() }

func (c *Client) setState(s State) { c.state.Store(int32(s)) }

func (c *Client) emitError(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

func (c *Client) markDone(err error, notify bool) {
	c.doneOnce.Do(func() {
		c.errMu.Lock()
		c.err = err
		c.errMu.Unlock()
		if err != nil {
			c.setState(Failed)
		} else {
			c.setState(Disconnected)
		}
		close(c.done)
		if notify && c.OnDisconnected != nil {
			c.OnDisconnected(err)
		}
	})
}

// run — supervisor: держит writer и dispatcher на текущем соединении,
// при обрыве либо завершает сессию, либо переподключается.
func (c *Client) run(conn *websocket.Conn) {
	defer c.wg.Done()

	for {
		err := c.serve(conn)
		if c.ctx.Err() != nil {
			c.markDone(nil, true)
			return
		}
		c.log.Warn("ws connection lost", "err", err)

		if !c.cfg.AutoReconnect {
			c.markDone(err, true)
			return
		}
		c.setState(Disconnected)
		if c.OnDisconnected != nil {
			c.OnDisconnected(err)
		}

		for {
			conn, err = c.dial(c.ctx)
			if err != nil {
				c.markDone(nil, true)
				return
			}
			if err = c.resubscribe(conn); err == nil {
				break
			}
			c.log.Warn("resubscribe failed", "err", err)
			c.closeConn(conn)
		}
	}
}

// serve — writer и dispatcher живут и умирают вместе.
func (c *Client) serve(conn *websocket.Conn) error {
	ctx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	// закрытие сокета разблокирует ReadMessage и зависшую запись
	stop := context.AfterFunc(ctx, func() { c.closeConn(conn) })
	defer stop()

	errc := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errc <- c.writeLoop(ctx, conn)
	}()
	go func() {
		defer wg.Done()
		errc <- c.readLoop(ctx, conn)
	}()

	first := <-errc
	cancel()
	wg.Wait()
	return first
}

// resubscribe — после реконнекта заново отправить подписки на все топики.
func (c *Client) resubscribe(conn *websocket.Conn) error {
	topics := c.reg.Topics()
	for _, t := range topics {
		if err := c.writeFrame(conn, Subscribe, t); err != nil {
			return fmt.Errorf("resubscribe %s: %w", t, err)
		}
	}
	if len(topics) > 0 {
		c.log.Info("resubscribed", "topics", len(topics))
	}
	return nil
}
