package session

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/lineedit"
)

// ANSI colors used on the interactive terminal.
const (
	colorReset  = "\033[0m"
	colorInfo   = "\033[36m"
	colorWarn   = "\033[33m"
	colorError  = "\033[31m"
	colorPrompt = "\033[34m"
	colorSelf   = "\033[35m"
	colorGuest  = "\033[90m"
)

// Printer writes user-visible lines above the prompt. Every line first
// erases whatever partial prompt is on the terminal line.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Printf prints a plain line.
func (p *Printer) Printf(format string, args ...any) {
	p.write(fmt.Sprintf(format, args...))
}

// Info prints a notice in cyan.
func (p *Printer) Info(msg string) { p.write(colorInfo + msg + colorReset) }

// Warn prints a warning in yellow.
func (p *Printer) Warn(msg string) { p.write(colorWarn + msg + colorReset) }

// Error prints an error in red.
func (p *Printer) Error(msg string) { p.write(colorError + msg + colorReset) }

func (p *Printer) write(line string) {
	if _, err := io.WriteString(p.w, lineedit.EraseLine+line+"\n"); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Printer.write",
			"error":    err.Error(),
		}).Debug("Failed to write to terminal")
	}
}
