// Package discovery находит токен и порт запущенного клиента LCU.
//
// Источники:
//   - ProcessSource — командная строка процесса LeagueClientUx
//     (--remoting-auth-token=..., --app-port=...);
//   - LockfileSource — файл lockfile в каталоге установки клиента
//     (LeagueClient:<pid>:<port>:<password>:https).
//
// Wait опрашивает источник бесконечно с фиксированной паузой, пока клиент не
// найдётся или не отменят контекст.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	ArgToken = "remoting-auth-token"
	ArgPort  = "app-port"
)

// ErrNotRunning — клиент не найден (ещё не запущен или нет нужных аргументов).
var ErrNotRunning = errors.New("league client is not running")

type Credentials struct {
	Token string `json:"token"`
	Port  int    `json:"port"`
}

// Source — откуда брать Credentials.
type Source interface {
	Lookup(ctx context.Context) (Credentials, error)
}

type SourceFunc func(ctx context.Context) (Credentials, error)

func (f SourceFunc) Lookup(ctx context.Context) (Credentials, error) { return f(ctx) }

// Chain — пробует источники по порядку, возвращает первый успешный.
type Chain []Source

func (c Chain) Lookup(ctx context.Context) (Credentials, error) {
	errs := make([]error, 0, len(c))
	for _, s := range c {
		creds, err := s.Lookup(ctx)
		if err == nil {
			return creds, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Credentials{}, ErrNotRunning
	}
	return Credentials{}, errors.Join(errs...)
}

// начало аргумента: необязательная кавычка, "--", имя, "="
var reArg = regexp.MustCompile(`("?)--([A-Za-z0-9][A-Za-z0-9_-]*)=`)

// ParseCommandLine разбирает аргументы вида --key=value.
// Для "--key=value с пробелами" значение читается до закрывающей кавычки,
// без кавычек до пробела.
func ParseCommandLine(s string) map[string]string {
	out := map[string]string{}
	for _, m := range reArg.FindAllStringSubmatchIndex(s, -1) {
		quoted := m[3] > m[2]
		key := s[m[4]:m[5]]
		rest := s[m[1]:]

		var end int
		if quoted {
			end = strings.IndexByte(rest, '"')
		} else {
			end = strings.IndexAny(rest, " \t\r\n\"")
		}
		if end < 0 {
			end = len(rest)
		}
		out[key] = strings.TrimSpace(rest[:end])
	}
	return out
}

// FromArgs — Credentials из разобранной командной строки.
func FromArgs(args map[string]string) (Credentials, error) {
	token := args[ArgToken]
	rawPort := args[ArgPort]
	if token == "" || rawPort == "" {
		return Credentials{}, ErrNotRunning
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil || port <= 0 || port > 65535 {
		return Credentials{}, fmt.Errorf("bad %s %q: %w", ArgPort, rawPort, ErrNotRunning)
	}
	return Credentials{Token: token, Port: port}, nil
}

// Wait — ждёт клиента, опрашивая src каждые delay.
// Ошибки поиска не возвращаются (только логируются); выход: успех или ctx.Err().
func Wait(ctx context.Context, src Source, delay time.Duration, logger *slog.Logger) (Credentials, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for attempt := 1; ; attempt++ {
		creds, err := src.Lookup(ctx)
		if err == nil {
			logger.Info("league client found", "port", creds.Port, "attempt", attempt)
			return creds, nil
		}
		// первый промах в info, остальные в debug
		if attempt == 1 {
			logger.Info("LCU is not running, waiting", "retry_in", delay)
		} else {
			logger.Debug("LCU lookup failed", "attempt", attempt, "err", err)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Credentials{}, ctx.Err()
		case <-t.C:
		}
	}
}
