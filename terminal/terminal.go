package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal indicates that input or output is redirected.
var ErrNotTerminal = errors.New("requires an interactive terminal, not a pipe or file")

// Terminal is a terminal switched to unbuffered, non-echoing input.
type Terminal struct {
	fd       int
	saved    unix.Termios
	acquired bool
	once     sync.Once
	err      error
}

// Configure disables echo and canonical line processing on in, with a
// minimum read size of one byte and no inter-byte timeout. Both in and out
// must be interactive terminals. The previous mode is restored by Restore.
func Configure(in, out *os.File) (*Terminal, error) {
	if !term.IsTerminal(int(in.Fd())) || !term.IsTerminal(int(out.Fd())) {
		return nil, ErrNotTerminal
	}

	fd := int(in.Fd())
	saved, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("read terminal mode: %w", err)
	}

	raw := *saved
	raw.Lflag &^= unix.ECHO | unix.ICANON
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw); err != nil {
		return nil, fmt.Errorf("set terminal mode: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Configure",
		"fd":       fd,
	}).Info("Terminal switched to raw input")

	return &Terminal{fd: fd, saved: *saved, acquired: true}, nil
}

// ReadAvailable reads whatever input is pending without waiting. It returns
// 0 and a nil error when nothing is available, and io.EOF once the input
// side has been closed.
func (t *Terminal) ReadAvailable(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	ready, err := unix.Poll(fds, 0)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("poll input: %w", err)
	}
	if ready == 0 || fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
		return 0, nil
	}

	n, err := unix.Read(t.fd, buf)
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read input: %w", err)
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}

// Restore puts the terminal back into the mode saved by Configure. Only the
// first call has an effect; later calls return the first result.
func (t *Terminal) Restore() error {
	t.once.Do(func() {
		if !t.acquired {
			return
		}
		t.err = unix.IoctlSetTermios(t.fd, ioctlWriteTermios, &t.saved)
		logrus.WithFields(logrus.Fields{
			"function": "Restore",
			"fd":       t.fd,
			"error":    t.err,
		}).Info("Terminal mode restored")
	})
	return t.err
}
