package lineedit

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/limits"
)

// Control bytes understood by the editor.
const (
	KeyCtrlA     byte = 0x01 // cursor to start
	KeyCtrlB     byte = 0x02 // cursor left
	KeyCtrlD     byte = 0x04 // end of transmission, handled by the caller
	KeyCtrlE     byte = 0x05 // cursor to end
	KeyCtrlF     byte = 0x06 // cursor right
	KeyCtrlH     byte = 0x08 // backspace
	KeyNewline   byte = '\n'
	KeyCtrlK     byte = 0x0b // kill to end of line
	KeyReturn    byte = '\r'
	KeyCtrlU     byte = 0x15 // kill to start of line
	KeyCtrlW     byte = 0x17 // backward delete word
	KeyEscape    byte = 0x1b
	KeyBackspace byte = 0x7f
)

// EraseLine returns the cursor to column 0 and clears the terminal line.
const EraseLine = "\r\033[2K"

// escapeSequenceLength is the length of the arrow key sequences ESC [ C and ESC [ D.
const escapeSequenceLength = 3

// Editor is a fixed-capacity split-buffer line editor.
//
// The bytes before the cursor occupy line[:nbuf]; the bytes after the cursor
// occupy line[len(line)-nstack:]. Moving the cursor transfers a single byte
// between the two regions, so cursor movement never shifts the buffer.
type Editor struct {
	line    []byte
	nbuf    int
	nstack  int
	escaped int
	dropped int
	// bracket reports that the '[' of a pending escape sequence is in the
	// buffer. A full buffer drops it like any other byte.
	bracket bool

	// OutputCapacity bounds the length of a completed line, trailing newline
	// included. Longer lines are cut off.
	OutputCapacity int
}

// New creates an editor holding at most capacity bytes. A non-positive
// capacity selects limits.LineCapacity.
func New(capacity int) *Editor {
	if capacity <= 0 {
		capacity = limits.LineCapacity
	}
	return &Editor{
		line:           make([]byte, capacity),
		OutputCapacity: capacity,
	}
}

// Feed consumes one input byte. It returns the completed line, including a
// trailing newline, and true when b finishes a line.
func (e *Editor) Feed(b byte) ([]byte, bool) {
	if b == KeyEscape {
		e.escaped = 1
		e.bracket = false
		return nil, false
	}
	if e.escaped > 0 {
		e.escaped++
	}

	switch b {
	case KeyNewline, KeyReturn:
		e.escaped = 0
		return e.complete(), true
	case KeyCtrlH, KeyBackspace:
		if e.nbuf > 0 {
			e.nbuf--
		}
	case KeyCtrlU:
		e.nbuf = 0
	case KeyCtrlK:
		e.nstack = 0
	case KeyCtrlA:
		for e.nbuf > 0 {
			e.cursorLeft()
		}
	case KeyCtrlE:
		for e.nstack > 0 {
			e.cursorRight()
		}
	case KeyCtrlB:
		if e.nbuf > 0 {
			e.cursorLeft()
		}
	case KeyCtrlF:
		if e.nstack > 0 {
			e.cursorRight()
		}
	case KeyCtrlW:
		for e.nbuf > 0 && e.line[e.nbuf-1] == ' ' {
			e.nbuf--
		}
		for e.nbuf > 0 && e.line[e.nbuf-1] != ' ' {
			e.nbuf--
		}
	case 'C', 'D':
		if e.escaped == escapeSequenceLength {
			if e.bracket {
				e.nbuf--
			}
			e.bracket = false
			if b == 'D' && e.nbuf > 0 {
				e.cursorLeft()
			}
			if b == 'C' && e.nstack > 0 {
				e.cursorRight()
			}
			e.escaped = 0
			break
		}
		e.insert(b)
	default:
		stored := e.insert(b)
		if e.escaped == 2 && b == '[' {
			e.bracket = stored
		}
	}

	// A sequence that does not continue with '[' is literal text, and the
	// counter expires once a full sequence length has been seen.
	if (e.escaped == 2 && b != '[') || e.escaped >= escapeSequenceLength {
		e.escaped = 0
	}
	return nil, false
}

func (e *Editor) insert(b byte) bool {
	if e.nbuf+e.nstack >= len(e.line) {
		e.dropped++
		logrus.WithFields(logrus.Fields{
			"function": "insert",
			"capacity": len(e.line),
			"dropped":  e.dropped,
		}).Debug("Input line full, dropping byte")
		return false
	}
	e.line[e.nbuf] = b
	e.nbuf++
	return true
}

func (e *Editor) cursorLeft() {
	e.nbuf--
	e.nstack++
	e.line[len(e.line)-e.nstack] = e.line[e.nbuf]
}

func (e *Editor) cursorRight() {
	e.line[e.nbuf] = e.line[len(e.line)-e.nstack]
	e.nbuf++
	e.nstack--
}

// complete materializes the logical line plus a newline and resets the buffer.
func (e *Editor) complete() []byte {
	out := make([]byte, 0, e.nbuf+e.nstack+1)
	out = append(out, e.line[:e.nbuf]...)
	out = append(out, e.after()...)
	out = append(out, KeyNewline)
	if e.OutputCapacity > 0 && len(out) > e.OutputCapacity {
		out = out[:e.OutputCapacity]
	}
	e.nbuf = 0
	e.nstack = 0
	return out
}

func (e *Editor) after() []byte {
	return e.line[len(e.line)-e.nstack:]
}

// Clear discards the current line and any pending escape sequence.
func (e *Editor) Clear() {
	e.nbuf = 0
	e.nstack = 0
	e.escaped = 0
	e.bracket = false
}

// Line returns a copy of the logical line content.
func (e *Editor) Line() []byte {
	out := make([]byte, 0, e.nbuf+e.nstack)
	out = append(out, e.line[:e.nbuf]...)
	return append(out, e.after()...)
}

// Cursor returns the cursor position, which is the length of the region before it.
func (e *Editor) Cursor() int { return e.nbuf }

// Len returns the number of bytes in the line.
func (e *Editor) Len() int { return e.nbuf + e.nstack }

// Cap returns the buffer capacity.
func (e *Editor) Cap() int { return len(e.line) }

// Dropped returns how many bytes were discarded because the line was full.
func (e *Editor) Dropped() int { return e.dropped }

// Render redraws the prompt and the line on w, leaving the terminal cursor at
// the editing position.
func (e *Editor) Render(w io.Writer, prompt string) error {
	out := make([]byte, 0, len(EraseLine)+len(prompt)+e.nbuf+e.nstack+8)
	out = append(out, EraseLine...)
	out = append(out, prompt...)
	out = append(out, e.line[:e.nbuf]...)
	if e.nstack > 0 {
		out = append(out, e.after()...)
		out = fmt.Appendf(out, "\033[%dD", e.nstack)
	}
	_, err := w.Write(out)
	return err
}
