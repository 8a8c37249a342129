// Package lineedit implements the non-blocking line editor of the autotox
// session.
//
// The editor consumes raw terminal bytes one at a time and never blocks. It
// keeps the line in a fixed-capacity split buffer: bytes before the cursor
// grow from the left, bytes after the cursor grow from the right, so moving
// the cursor costs one byte copy.
//
// # Editing Vocabulary
//
//	Enter          complete the line
//	DEL, C-h       delete the byte before the cursor
//	C-u / C-k      kill to start / end of line
//	C-a / C-e      cursor to start / end
//	C-b / C-f      cursor left / right
//	C-w            delete the previous word
//	ESC [ D / C    arrow keys left / right
//
// Every other byte is inserted at the cursor. When the line is full, further
// bytes are dropped and counted.
//
// # Usage
//
//	ed := lineedit.New(limits.LineCapacity)
//	for _, b := range input {
//	    if line, ok := ed.Feed(b); ok {
//	        dispatch(line)
//	    }
//	}
//	ed.Render(os.Stdout, "> ")
package lineedit
