package discovery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandLineQuoted(t *testing.T) {
	got := ParseCommandLine(`"--remoting-auth-token=_BkC3zoDF6600gmlQdUs6w" "--app-port=58929"`)
	assert.Equal(t, map[string]string{
		"remoting-auth-token": "_BkC3zoDF6600gmlQdUs6w",
		"app-port":            "58929",
	}, got)
}

func TestParseCommandLineWmicOutput(t *testing.T) {
	line := `"C:/Riot Games/League of Legends/LeagueClientUx.exe" "--riotclient-auth-token=abc" ` +
		`"--app-port=61234" "--remoting-auth-token=tok-en_1" "--install-directory=C:/Riot Games/League of Legends" ` +
		`"--no-rads"`
	got := ParseCommandLine(line)
	assert.Equal(t, "61234", got[ArgPort])
	assert.Equal(t, "tok-en_1", got[ArgToken])
	assert.Equal(t, "abc", got["riotclient-auth-token"])
	assert.Equal(t, "C:/Riot Games/League of Legends", got["install-directory"])
	assert.NotContains(t, got, "no-rads")
}

func TestParseCommandLineUnquoted(t *testing.T) {
	got := ParseCommandLine("/Applications/League of Legends.app/LeagueClientUx --app-port=50000 --remoting-auth-token=xyz --locale=en_US")
	assert.Equal(t, "50000", got[ArgPort])
	assert.Equal(t, "xyz", got[ArgToken])
	assert.Equal(t, "en_US", got["locale"])
}

func TestParseCommandLineEmpty(t *testing.T) {
	assert.Empty(t, ParseCommandLine(""))
	assert.Empty(t, ParseCommandLine("No Instance(s) Available."))
}

func TestFromArgs(t *testing.T) {
	creds, err := FromArgs(map[string]string{ArgToken: "t", ArgPort: "58929"})
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "t", Port: 58929}, creds)

	_, err = FromArgs(map[string]string{ArgToken: "t"})
	assert.ErrorIs(t, err, ErrNotRunning)

	_, err = FromArgs(map[string]string{ArgToken: "t", ArgPort: "port"})
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestProcessSource(t *testing.T) {
	src := ProcessSource{
		Name: "LeagueClientUx",
		run: func(_ context.Context, name string) (string, error) {
			assert.Equal(t, "LeagueClientUx", name)
			return "CommandLine\n" +
				`"LeagueClientUx.exe" "--remoting-auth-token=secret" "--app-port=4242"` + "\n", nil
		},
	}
	creds, err := src.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "secret", Port: 4242}, creds)

	src.run = func(context.Context, string) (string, error) { return "No Instance(s) Available.\n", nil }
	_, err = src.Lookup(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestLockfileSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := LockfileSource{Fs: fs, Path: "/riot/lockfile"}

	_, err := src.Lookup(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, afero.WriteFile(fs, "/riot/lockfile", []byte("LeagueClient:9876:58929:pw_1:https\n"), 0o644))
	creds, err := src.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "pw_1", Port: 58929}, creds)
}

func TestParseLockfileMalformed(t *testing.T) {
	for _, s := range []string{"", "LeagueClient:1:2", "LeagueClient:1:port:pw:https", "LeagueClient:1:80::https"} {
		_, err := ParseLockfile(s)
		assert.ErrorIs(t, err, ErrNotRunning, s)
	}
}

func TestChainFirstSuccess(t *testing.T) {
	fail := SourceFunc(func(context.Context) (Credentials, error) { return Credentials{}, ErrNotRunning })
	ok := SourceFunc(func(context.Context) (Credentials, error) { return Credentials{Token: "a", Port: 1}, nil })

	creds, err := Chain{fail, ok}.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", creds.Token)

	_, err = Chain{fail, fail}.Lookup(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)

	_, err = Chain{}.Lookup(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestWaitRetriesUntilFound(t *testing.T) {
	var calls atomic.Int32
	src := SourceFunc(func(context.Context) (Credentials, error) {
		if calls.Add(1) < 4 {
			return Credentials{}, errors.New("not yet")
		}
		return Credentials{Token: "tok", Port: 2999}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	creds, err := Wait(ctx, src, 5*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "tok", Port: 2999}, creds)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitNeverSurfacesLookupErrors(t *testing.T) {
	var calls atomic.Int32
	src := SourceFunc(func(context.Context) (Credentials, error) {
		calls.Add(1)
		return Credentials{}, ErrNotRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_, err := Wait(ctx, src, 10*time.Millisecond, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrNotRunning)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}
