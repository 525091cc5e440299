// Package term is the headless frontend. It renders frames as text and reads
// keys from a terminal put into cbreak mode.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/beanboi7/chyp-8/emu/cpu"
	"github.com/beanboi7/chyp-8/emu/display"
	"github.com/pkg/term/termios"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminals only report key presses, a key counts as held until this long
// after its last byte arrived. Auto repeat keeps it held.
const keyRepeatDuration = time.Second / 5

const (
	escape     = 0x1b
	cursorHome = "\x1b[H"
	clearAll   = "\x1b[2J"
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

type Terminal struct {
	in     io.Reader
	out    io.Writer
	logger *log.Logger
	keys   map[byte]uint8
	now    func() time.Time

	mu     sync.Mutex
	held   [cpu.KeyCount]time.Time
	closed bool

	fd       uintptr
	raw      bool
	original unix.Termios
}

// New returns a terminal frontend reading in and writing out. Host key names
// have to be single characters or "space".
func New(logger *log.Logger, in io.Reader, out io.Writer, bindings map[uint8]string) (*Terminal, error) {
	keys := make(map[byte]uint8, len(bindings))
	for key, name := range bindings {
		b, err := hostByte(name)
		if err != nil {
			return nil, fmt.Errorf("keypad key %X: %w", key, err)
		}
		keys[b] = key
	}

	return &Terminal{
		in:     in,
		out:    out,
		logger: logger,
		keys:   keys,
		now:    time.Now,
	}, nil
}

func hostByte(name string) (byte, error) {
	switch {
	case name == "space":
		return ' ', nil
	case len(name) == 1 && name[0] != escape:
		return name[0], nil
	default:
		return 0, fmt.Errorf("unsupported host key %q in terminal mode", name)
	}
}

// Start switches a tty input into cbreak mode and starts reading keys.
func (t *Terminal) Start() error {
	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = f.Fd()
		if err := termios.Tcgetattr(t.fd, &t.original); err != nil {
			return fmt.Errorf("reading terminal attributes: %w", err)
		}
		cbreak := t.original
		cbreak.Lflag &^= unix.ICANON | unix.ECHO
		if err := termios.Tcsetattr(t.fd, termios.TCSANOW, &cbreak); err != nil {
			return fmt.Errorf("enabling cbreak mode: %w", err)
		}
		t.raw = true
		t.logger.Debug("Terminal in cbreak mode")
	}

	if _, err := io.WriteString(t.out, clearAll+hideCursor); err != nil {
		return err
	}
	go t.read()
	return nil
}

// Stop restores the terminal.
func (t *Terminal) Stop() error {
	if _, err := io.WriteString(t.out, showCursor); err != nil {
		return err
	}
	if !t.raw {
		return nil
	}
	t.raw = false
	return termios.Tcsetattr(t.fd, termios.TCSANOW, &t.original)
}

func (t *Terminal) read() {
	r := bufio.NewReader(t.in)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err != io.EOF {
				t.logger.Error("Reading keyboard failed", err)
			}
			t.close()
			return
		}
		t.feed(b)
	}
}

func (t *Terminal) feed(b byte) {
	if b == escape {
		t.close()
		return
	}
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	key, ok := t.keys[b]
	if !ok {
		return
	}

	t.mu.Lock()
	t.held[key] = t.now().Add(keyRepeatDuration)
	t.mu.Unlock()
}

func (t *Terminal) close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

func (t *Terminal) Poll() [cpu.KeyCount]bool {
	now := t.now()
	var keys [cpu.KeyCount]bool

	t.mu.Lock()
	for i, until := range t.held {
		keys[i] = now.Before(until)
	}
	t.mu.Unlock()
	return keys
}

func (t *Terminal) Render(frame display.Frame) {
	if _, err := io.WriteString(t.out, cursorHome+frame.String()); err != nil {
		t.logger.Error("Rendering frame failed", err)
		t.close()
	}
}

func (t *Terminal) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
