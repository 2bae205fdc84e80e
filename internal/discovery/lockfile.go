package discovery

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// LockfileSource читает lockfile клиента:
//
//	LeagueClient:12345:58929:_BkC3zoDF6600gmlQdUs6w:https
type LockfileSource struct {
	Fs   afero.Fs
	Path string
}

func (l LockfileSource) Lookup(_ context.Context) (Credentials, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	b, err := afero.ReadFile(fs, l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrNotRunning
		}
		return Credentials{}, fmt.Errorf("read lockfile: %w", err)
	}
	return ParseLockfile(string(b))
}

// ParseLockfile — name:pid:port:password:protocol.
func ParseLockfile(s string) (Credentials, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 5 {
		return Credentials{}, fmt.Errorf("malformed lockfile (%d fields): %w", len(parts), ErrNotRunning)
	}
	port, err := strconv.Atoi(parts[2])
	if err != nil || port <= 0 || port > 65535 {
		return Credentials{}, fmt.Errorf("bad lockfile port %q: %w", parts[2], ErrNotRunning)
	}
	if parts[3] == "" {
		return Credentials{}, fmt.Errorf("empty lockfile password: %w", ErrNotRunning)
	}
	return Credentials{Token: parts[3], Port: port}, nil
}
