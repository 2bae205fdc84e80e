//go:build windows

package discovery

import (
	"context"
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// commandLines — wmic без всплывающего окна консоли.
func commandLines(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name='%s.exe'", name)
	cmd := exec.CommandContext(ctx, "wmic", "PROCESS", "WHERE", query, "GET", "commandline")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
