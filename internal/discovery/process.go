package discovery

import (
	"context"
	"fmt"
	"strings"
)

// DefaultProcessName — процесс UX-клиента, которому передаются токен и порт.
const DefaultProcessName = "LeagueClientUx"

// ProcessSource читает командную строку процесса клиента.
type ProcessSource struct {
	Name string

	// run — выполнение команды ОС; подменяется в тестах
	run func(ctx context.Context, name string) (string, error)
}

func (p ProcessSource) Lookup(ctx context.Context) (Credentials, error) {
	name := p.Name
	if name == "" {
		name = DefaultProcessName
	}
	run := p.run
	if run == nil {
		run = commandLines
	}
	out, err := run(ctx, name)
	if err != nil {
		return Credentials{}, fmt.Errorf("query process %s: %w", name, err)
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "--"+ArgToken) {
			continue
		}
		if creds, err := FromArgs(ParseCommandLine(line)); err == nil {
			return creds, nil
		}
	}
	return Credentials{}, ErrNotRunning
}
