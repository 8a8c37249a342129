package lineedit

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll feeds input and returns every completed line.
func feedAll(e *Editor, input string) []string {
	var lines []string
	for i := 0; i < len(input); i++ {
		if line, ok := e.Feed(input[i]); ok {
			lines = append(lines, string(line))
		}
	}
	return lines
}

func TestFeedEditing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "hello\n", want: "hello\n"},
		{name: "carriage_return", input: "hi\r", want: "hi\n"},
		{name: "insert_at_cursor", input: "hi\x02!\n", want: "h!i\n"},
		{name: "backspace", input: "abc\x7f\n", want: "ab\n"},
		{name: "ctrl_h", input: "abc\x08\x08\n", want: "a\n"},
		{name: "backspace_empty", input: "\x7f\x7fx\n", want: "x\n"},
		{name: "kill_to_start", input: "abcdef\x02\x02\x15\n", want: "ef\n"},
		{name: "kill_to_end", input: "abcdef\x02\x02\x0b\n", want: "abcd\n"},
		{name: "home_insert", input: "bc\x01a\n", want: "abc\n"},
		{name: "home_end_insert", input: "ab\x01\x05c\n", want: "abc\n"},
		{name: "forward", input: "ac\x02\x02\x06b\n", want: "abc\n"},
		{name: "forward_at_end", input: "ab\x06\x06c\n", want: "abc\n"},
		{name: "back_at_start", input: "\x02\x02ab\n", want: "ab\n"},
		{name: "delete_word", input: "one two\x17\n", want: "one \n"},
		{name: "delete_word_trailing_spaces", input: "one two   \x17\n", want: "one \n"},
		{name: "delete_word_keeps_after_cursor", input: "one two\x02\x02\x17\n", want: "one wo\n"},
		{name: "arrow_left", input: "ac\x1b[Db\n", want: "abc\n"},
		{name: "arrow_right", input: "ac\x1b[D\x1b[Cb\n", want: "acb\n"},
		{name: "arrow_left_at_start", input: "\x1b[Da\n", want: "a\n"},
		{name: "capital_c_without_escape", input: "[C\n", want: "[C\n"},
		{name: "escape_then_other", input: "\x1bxC\n", want: "xC\n"},
		{name: "escape_expired", input: "\x1b[AC\n", want: "[AC\n"},
		{name: "empty_line", input: "\n", want: "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(0)
			lines := feedAll(e, tt.input)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.want, lines[0])
			assert.Equal(t, 0, e.Len())
			assert.Equal(t, 0, e.Cursor())
		})
	}
}

func TestFeedMultipleLines(t *testing.T) {
	e := New(0)
	lines := feedAll(e, "first\nsecond\r\n")
	assert.Equal(t, []string{"first\n", "second\n", "\n"}, lines)
}

func TestFeedOverflowDropsBytes(t *testing.T) {
	e := New(8)
	lines := feedAll(e, "0123456789ab")
	assert.Empty(t, lines)
	assert.Equal(t, 8, e.Len())
	assert.Equal(t, 4, e.Dropped())
	assert.Equal(t, "01234567", string(e.Line()))

	line, ok := e.Feed('\n')
	require.True(t, ok)
	assert.Equal(t, "01234567", string(line), "newline does not fit the output capacity")
}

func TestFeedOverflowWithCursorInside(t *testing.T) {
	e := New(4)
	feedAll(e, "abcd\x02\x02")
	e.Feed('x')
	assert.Equal(t, "abcd", string(e.Line()))
	assert.Equal(t, 2, e.Cursor())
	assert.Equal(t, 1, e.Dropped())

	t.Run("arrow_with_dropped_bracket", func(t *testing.T) {
		e := New(4)
		feedAll(e, "ab[c\x02\x1b[D")
		assert.Equal(t, "ab[c", string(e.Line()), "typed '[' survives")
		assert.Equal(t, 2, e.Cursor())
		assert.Equal(t, 1, e.Dropped())
	})

	t.Run("arrow_with_stored_bracket", func(t *testing.T) {
		e := New(5)
		feedAll(e, "ab[c\x02\x1b[D")
		assert.Equal(t, "ab[c", string(e.Line()))
		assert.Equal(t, 2, e.Cursor())
		assert.Equal(t, 0, e.Dropped())
	})
}

func TestCursorRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		name       string
		away, back byte
		start      string
		arrowAway  string
		arrowBack  string
	}{
		{name: "left_then_right", away: KeyCtrlB, back: KeyCtrlF, arrowAway: "\x1b[D", arrowBack: "\x1b[C"},
		{name: "right_then_left", away: KeyCtrlF, back: KeyCtrlB, start: "\x01", arrowAway: "\x1b[C", arrowBack: "\x1b[D"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			for n := 0; n <= 6; n++ {
				e := New(16)
				feedAll(e, "hello!"+tt.start)
				nbuf, nstack := e.nbuf, e.nstack
				content := string(e.Line())

				for i := 0; i < n; i++ {
					e.Feed(tt.away)
				}
				for i := 0; i < n; i++ {
					e.Feed(tt.back)
				}
				assert.Equal(t, nbuf, e.nbuf, "n=%d", n)
				assert.Equal(t, nstack, e.nstack, "n=%d", n)
				assert.Equal(t, content, string(e.Line()), "n=%d", n)

				for i := 0; i < n; i++ {
					feedAll(e, tt.arrowAway)
				}
				for i := 0; i < n; i++ {
					feedAll(e, tt.arrowBack)
				}
				assert.Equal(t, nbuf, e.nbuf, "arrows n=%d", n)
				assert.Equal(t, nstack, e.nstack, "arrows n=%d", n)
				assert.Equal(t, content, string(e.Line()), "arrows n=%d", n)
			}
		})
	}
}

func TestOutputCapacity(t *testing.T) {
	e := New(16)
	e.OutputCapacity = 4
	lines := feedAll(e, "abcdefgh\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "abcd", lines[0])
}

func TestClear(t *testing.T) {
	e := New(0)
	feedAll(e, "abc\x02\x1b")
	e.Clear()
	assert.Equal(t, 0, e.Len())
	lines := feedAll(e, "[Cz\n")
	assert.Equal(t, []string{"[Cz\n"}, lines)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prompt string
		want   string
	}{
		{name: "empty", prompt: "> ", want: EraseLine + "> "},
		{name: "cursor_at_end", input: "abc", prompt: "> ", want: EraseLine + "> abc"},
		{name: "cursor_inside", input: "abc\x02\x02", prompt: "> ", want: EraseLine + "> abc\033[2D"},
		{name: "cursor_at_start", input: "abc\x01", prompt: "", want: EraseLine + "abc\033[3D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(0)
			feedAll(e, tt.input)
			var buf bytes.Buffer
			require.NoError(t, e.Render(&buf, tt.prompt))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

// modelEditor is a straightforward slice-based editor used as an oracle.
type modelEditor struct {
	line     []byte
	cursor   int
	capacity int
}

func (m *modelEditor) feed(b byte) {
	switch b {
	case KeyCtrlH, KeyBackspace:
		if m.cursor > 0 {
			m.line = append(m.line[:m.cursor-1], m.line[m.cursor:]...)
			m.cursor--
		}
	case KeyCtrlU:
		m.line = m.line[m.cursor:]
		m.cursor = 0
	case KeyCtrlK:
		m.line = m.line[:m.cursor]
	case KeyCtrlA:
		m.cursor = 0
	case KeyCtrlE:
		m.cursor = len(m.line)
	case KeyCtrlB:
		if m.cursor > 0 {
			m.cursor--
		}
	case KeyCtrlF:
		if m.cursor < len(m.line) {
			m.cursor++
		}
	case KeyCtrlW:
		start := m.cursor
		for start > 0 && m.line[start-1] == ' ' {
			start--
		}
		for start > 0 && m.line[start-1] != ' ' {
			start--
		}
		m.line = append(m.line[:start], m.line[m.cursor:]...)
		m.cursor = start
	default:
		if len(m.line) >= m.capacity {
			return
		}
		m.line = append(m.line[:m.cursor], append([]byte{b}, m.line[m.cursor:]...)...)
		m.cursor++
	}
}

func TestEditorMatchesModel(t *testing.T) {
	alphabet := []byte{'a', 'b', 'z', ' ', KeyCtrlH, KeyBackspace, KeyCtrlU, KeyCtrlK,
		KeyCtrlA, KeyCtrlE, KeyCtrlB, KeyCtrlF, KeyCtrlW}
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 200; round++ {
		capacity := 1 + rng.Intn(24)
		e := New(capacity)
		m := &modelEditor{capacity: capacity}

		for step := 0; step < 100; step++ {
			b := alphabet[rng.Intn(len(alphabet))]
			_, done := e.Feed(b)
			m.feed(b)
			require.False(t, done)
			require.Equal(t, string(m.line), string(e.Line()), "round %d step %d", round, step)
			require.Equal(t, m.cursor, e.Cursor(), "round %d step %d", round, step)
			require.LessOrEqual(t, e.Len(), e.Cap())
		}
	}
}

func TestEditorLongPaste(t *testing.T) {
	e := New(0)
	input := strings.Repeat("x", 600) + "\n"
	lines := feedAll(e, input)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], e.Cap())
	assert.Equal(t, 600-e.Cap(), e.Dropped())
}
