package teemo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/EgorLis/teemo/internal/config"
	"github.com/EgorLis/teemo/internal/discovery"
	"github.com/EgorLis/teemo/internal/lcuhttp"
	"github.com/EgorLis/teemo/internal/lcuws"
	"github.com/EgorLis/teemo/internal/topic"
)

type (
	Credentials = discovery.Credentials
	Source      = discovery.Source
	SourceFunc  = discovery.SourceFunc
	Callback    = lcuws.Callback
	Config      = config.Config
)

func DefaultConfig() Config { return config.Default() }

// LoadConfig — JSON-файл + переменные окружения TEEMO_*.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// Firehose — подписка на все события сразу.
const Firehose = topic.Firehose

var ErrNotStarted = errors.New("teemo: not started")

type Teemo struct {
	cfg Config
	log *slog.Logger
	src discovery.Source

	mu      sync.Mutex
	creds   Credentials
	started bool
	api     *lcuhttp.Client
	live    *lcuhttp.Client
	ws      *lcuws.Client

	// "События" WS-сессии; читаются в момент вызова, так что их можно
	// назначать и после Start
	OnConnected    func()
	OnDisconnected func(error)
	OnError        func(error)
}

type Option func(*Teemo)

func WithLogger(l *slog.Logger) Option {
	return func(t *Teemo) {
		if l != nil {
			t.log = l
		}
	}
}

// WithSource — свой источник Credentials (по умолчанию процесс клиента + lockfile).
func WithSource(s Source) Option {
	return func(t *Teemo) { t.src = s }
}

func New(cfg Config, opts ...Option) *Teemo {
	t := &Teemo{cfg: cfg, log: slog.Default()}
	for _, o := range opts {
		o(t)
	}
	if t.src == nil {
		t.src = defaultSource(cfg)
	}
	t.live = lcuhttp.New(lcuhttp.Options{
		BaseURL:            baseURL(cfg.Host, cfg.LivePort),
		Timeout:            cfg.RequestTimeout.Std(),
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Logger:             t.log,
	})
	return t
}

func defaultSource(cfg Config) discovery.Source {
	chain := discovery.Chain{discovery.ProcessSource{Name: cfg.ProcessName}}
	if cfg.LockfilePath != "" {
		chain = append(chain, discovery.LockfileSource{Path: cfg.LockfilePath})
	}
	return chain
}

func baseURL(host string, port int) string {
	return "https://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/"
}

// Start — ждёт запущенный клиент LCU (бесконечно, до отмены ctx) и готовит
// HTTP- и WS-клиентов. Повторный Start закрывает прежнюю WS-сессию.
func (t *Teemo) Start(ctx context.Context) error {
	creds, err := discovery.Wait(ctx, t.src, t.cfg.RetryDelay.Std(), t.log)
	if err != nil {
		return err
	}

	ws := lcuws.New(lcuws.Config{
		Host:               t.cfg.Host,
		Port:               creds.Port,
		Token:              creds.Token,
		RetryDelay:         t.cfg.RetryDelay.Std(),
		HandshakeTimeout:   t.cfg.HandshakeTimeout.Std(),
		QueueSize:          t.cfg.QueueSize,
		InsecureSkipVerify: t.cfg.InsecureSkipVerify,
		AutoReconnect:      t.cfg.AutoReconnect,
		Logger:             t.log,
	})
	ws.OnConnected = func() {
		if h := t.OnConnected; h != nil {
			h()
		}
	}
	ws.OnDisconnected = func(err error) {
		if h := t.OnDisconnected; h != nil {
			h(err)
		}
	}
	ws.OnError = func(err error) {
		if h := t.OnError; h != nil {
			h(err)
		}
	}

	api := lcuhttp.New(lcuhttp.Options{
		BaseURL:            baseURL(t.cfg.Host, creds.Port),
		Token:              creds.Token,
		Auth:               true,
		Timeout:            t.cfg.RequestTimeout.Std(),
		InsecureSkipVerify: t.cfg.InsecureSkipVerify,
		Logger:             t.log,
	})

	t.mu.Lock()
	prev := t.ws
	t.creds, t.api, t.ws, t.started = creds, api, ws, true
	t.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	t.log.Info("teemo has finished initializing", "url", api.URL(""))
	return nil
}

// StartRealtime — WS-рукопожатие (с повторами) и запуск writer/dispatcher.
func (t *Teemo) StartRealtime(ctx context.Context) error {
	ws, err := t.session()
	if err != nil {
		return err
	}
	if err := ws.Connect(ctx); err != nil {
		return fmt.Errorf("start realtime: %w", err)
	}
	return nil
}

// Request — запрос к LCU. Ошибки возвращаются данными: {"code":500,"message":...}.
func (t *Teemo) Request(ctx context.Context, method, path string, body any) any {
	t.mu.Lock()
	api := t.api
	t.mu.Unlock()
	if api == nil {
		return lcuhttp.ErrorBody(500, lcuhttp.ServiceError)
	}
	return api.Do(ctx, method, path, body)
}

// LiveRequest — запрос к Live Client Data API (порт 2999, только во время матча).
func (t *Teemo) LiveRequest(ctx context.Context, method, path string, body any) any {
	return t.live.Do(ctx, method, path, body)
}

func (t *Teemo) Subscribe(ctx context.Context, topic string, cb Callback) error {
	ws, err := t.session()
	if err != nil {
		return err
	}
	return ws.Subscribe(ctx, topic, cb)
}

// SubscribeAll — подписка на нефильтрованный поток всех событий.
func (t *Teemo) SubscribeAll(ctx context.Context, cb Callback) error {
	return t.Subscribe(ctx, Firehose, cb)
}

func (t *Teemo) Unsubscribe(ctx context.Context, topic string) error {
	ws, err := t.session()
	if err != nil {
		return err
	}
	return ws.Unsubscribe(ctx, topic)
}

// Close — остановить фоновые задачи. Для восстановления нужен новый Start.
func (t *Teemo) Close() {
	t.mu.Lock()
	ws := t.ws
	t.ws = nil
	t.started = false
	t.mu.Unlock()

	if ws != nil {
		ws.Close()
	}
}

// Done закрывается, когда WS-сессия завершилась; nil до Start.
func (t *Teemo) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ws == nil {
		return nil
	}
	return t.ws.Done()
}

func (t *Teemo) Credentials() (Credentials, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.creds, t.creds.Token != ""
}

func (t *Teemo) session() (*lcuws.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started || t.ws == nil {
		return nil, ErrNotStarted
	}
	return t.ws, nil
}
