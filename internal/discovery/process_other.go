//go:build !windows

package discovery

import (
	"context"
	"os/exec"
	"strings"
)

// commandLines — строки `ps`, в которых встречается имя процесса.
func commandLines(ctx context.Context, name string) (string, error) {
	out, err := exec.CommandContext(ctx, "ps", "-A", "-o", "args").Output()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, name) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
