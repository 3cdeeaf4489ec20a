package ftpserver

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// dialControl lets the active-mode dialer rebind the same local port the
// session uses for passive-mode listening, see dialcontrol_unix.go.
func dialControl(_, _ string, c syscall.RawConn) error {
	var errSetOpts error

	err := c.Control(func(fd uintptr) {
		errSetOpts = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}

	return errSetOpts
}
