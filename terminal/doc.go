// Package terminal turns the process's standard input into a byte source
// that never blocks the session loop.
//
// Configure saves the terminal mode and disables echo and canonical line
// processing so every keystroke is delivered immediately. ReadAvailable
// polls the descriptor with a zero timeout before reading, which keeps the
// descriptor itself in blocking mode; standard output usually shares the
// same open file description and must not start failing with EAGAIN.
//
// Restore is idempotent. Callers defer it and also call it when a
// termination signal arrives:
//
//	t, err := terminal.Configure(os.Stdin, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	defer t.Restore()
package terminal
