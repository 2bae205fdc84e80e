// Package config — настройки клиента: JSON-файл + переменные окружения TEEMO_*.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Duration — time.Duration, которая в JSON пишется строкой ("500ms").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"500ms\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	Host         string `json:"host" validate:"required,hostname_rfc1123|ip"`
	LivePort     int    `json:"live_port" validate:"min=1,max=65535"`
	ProcessName  string `json:"process_name" validate:"required"`
	LockfilePath string `json:"lockfile_path,omitempty"`

	// RetryDelay — пауза между попытками поиска клиента и WS-рукопожатия.
	RetryDelay Duration `json:"retry_delay" validate:"gt=0"`
	// 0 = без таймаута
	HandshakeTimeout Duration `json:"handshake_timeout" validate:"gte=0"`
	RequestTimeout   Duration `json:"request_timeout" validate:"gte=0"`

	QueueSize int `json:"queue_size" validate:"min=1"`

	// InsecureSkipVerify — доверять любому сертификату. Клиент LCU отдаёт
	// самоподписанный сертификат, поэтому по умолчанию включено; разрешено
	// только для loopback-хоста.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
	// AutoReconnect — переподключаться и переподписываться после обрыва WS.
	AutoReconnect bool `json:"auto_reconnect"`
}

// ErrInsecureRemote — InsecureSkipVerify для не-loopback хоста.
var ErrInsecureRemote = errors.New("insecure_skip_verify is only allowed for loopback hosts")

var validate = validator.New(validator.WithRequiredStructEnabled())

// fs — файловая система для Load/Save; подменяется в тестах
var fs = afero.NewOsFs()

func Default() Config {
	return Config{
		Host:               "127.0.0.1",
		LivePort:           2999,
		ProcessName:        "LeagueClientUx",
		RetryDelay:         Duration(500 * time.Millisecond),
		QueueSize:          100,
		InsecureSkipVerify: true,
	}
}

// Load — Default() <- JSON-файл (если есть) <- окружение (.env тоже).
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "err", err)
	}

	cfg := Default()
	if path != "" {
		b, err := afero.ReadFile(fs, path)
		switch {
		case err == nil:
			if err := json.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			slog.Debug("config file not found, using defaults", "path", path)
		default:
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(&cfg, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, b, 0o644)
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.InsecureSkipVerify && !IsLoopback(c.Host) {
		return fmt.Errorf("host %q: %w", c.Host, ErrInsecureRemote)
	}
	return nil
}

func IsLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}
	duration := func(key string, dst *Duration) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = Duration(d)
		return nil
	}

	str("TEEMO_HOST", &c.Host)
	str("TEEMO_PROCESS_NAME", &c.ProcessName)
	str("TEEMO_LOCKFILE", &c.LockfilePath)
	return errors.Join(
		integer("TEEMO_LIVE_PORT", &c.LivePort),
		integer("TEEMO_QUEUE_SIZE", &c.QueueSize),
		duration("TEEMO_RETRY_DELAY", &c.RetryDelay),
		duration("TEEMO_HANDSHAKE_TIMEOUT", &c.HandshakeTimeout),
		duration("TEEMO_REQUEST_TIMEOUT", &c.RequestTimeout),
		boolean("TEEMO_INSECURE_SKIP_VERIFY", &c.InsecureSkipVerify),
		boolean("TEEMO_AUTO_RECONNECT", &c.AutoReconnect),
	)
}
