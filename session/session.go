package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/config"
	"github.com/opd-ai/autotox/contact"
	"github.com/opd-ai/autotox/limits"
	"github.com/opd-ai/autotox/lineedit"
	"github.com/opd-ai/autotox/peer"
	"github.com/opd-ai/autotox/transfer"
)

// inputChunk is the size of a single raw read.
const inputChunk = 128

// heartbeatInterval is the period of the liveness log line.
const heartbeatInterval = 120 * time.Second

var (
	// ErrNoInput is returned by New when Options.Input is nil.
	ErrNoInput = errors.New("session: input source is required")
	// ErrNoOutput is returned by New when Options.Output is nil.
	ErrNoOutput = errors.New("session: output writer is required")
	// ErrNoNetwork is returned by New when Options.Network is nil.
	ErrNoNetwork = errors.New("session: network is required")
)

// errStop ends Run without an error.
var errStop = errors.New("session stopped")

// InputSource delivers raw keystrokes. ReadAvailable must not block; it
// returns 0, nil when nothing is pending and io.EOF once input is closed.
type InputSource interface {
	ReadAvailable(buf []byte) (int, error)
}

// SavedataStore persists the network savedata.
type SavedataStore interface {
	Save(data []byte) error
}

// Options configures a Session.
type Options struct {
	Input   InputSource
	Output  io.Writer
	Network peer.Network
	// Store receives the savedata after commands and on /save. Nil disables
	// saving.
	Store  SavedataStore
	Config config.Config
	// TimeProvider drives timestamps and transfer rates. Nil selects the
	// wall clock.
	TimeProvider transfer.TimeProvider
}

// Session is the state of one interactive client run.
type Session struct {
	cfg      config.Config
	in       InputSource
	out      io.Writer
	net      peer.Network
	store    SavedataStore
	clock    transfer.TimeProvider
	printer  *Printer
	editor   *lineedit.Editor
	book     *contact.Book
	requests *contact.Requests
	machine  *transfer.Machine
	commands []command

	talkingTo      *contact.Contact
	selfStatus     peer.ConnectionStatus
	stopped        bool
	readBuf        [inputChunk]byte
	interfaceAddrs addrLister
	lastHeartbeat  time.Time
}

// New creates a session, loads the contact list from the network and
// applies the configured profile.
func New(opts Options) (*Session, error) {
	if opts.Input == nil {
		return nil, ErrNoInput
	}
	if opts.Output == nil {
		return nil, ErrNoOutput
	}
	if opts.Network == nil {
		return nil, ErrNoNetwork
	}

	clock := opts.TimeProvider
	if clock == nil {
		clock = transfer.DefaultTimeProvider{}
	}

	s := &Session{
		cfg:      opts.Config,
		in:       opts.Input,
		out:      opts.Output,
		net:      opts.Network,
		store:    opts.Store,
		clock:    clock,
		printer:  NewPrinter(opts.Output),
		editor:   lineedit.New(limits.LineCapacity),
		book:     contact.NewBook(),
		requests: contact.NewRequests(),
		commands: commandTable(),

		interfaceAddrs: net.InterfaceAddrs,
	}
	s.book.SetTimeProvider(clock)
	s.requests.SetTimeProvider(clock)
	s.machine = transfer.NewMachine(opts.Network, s.printer, opts.Config.DownloadDir)
	s.machine.SetTimeProvider(clock)

	s.loadContacts()
	s.applyProfile()

	logrus.WithFields(logrus.Fields{
		"function":     "New",
		"contacts":     s.book.Len(),
		"download_dir": s.machine.DownloadDir(),
	}).Info("Session created")

	return s, nil
}

func (s *Session) loadContacts() {
	for _, info := range s.net.Contacts() {
		c := s.book.Add(info.Number, info.PublicKey)
		c.Name = info.Name
		c.StatusMessage = info.StatusMessage
		c.ConnectionStatus = info.Status
	}
}

func (s *Session) applyProfile() {
	self := s.net.Self()
	s.selfStatus = self.Status
	if s.cfg.Name != "" && s.cfg.Name != self.Name {
		if err := s.net.SetName(s.cfg.Name); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "applyProfile",
				"error":    err.Error(),
			}).Warn("Failed to set name")
		}
	}
	if s.cfg.StatusMessage != "" && s.cfg.StatusMessage != self.StatusMessage {
		if err := s.net.SetStatusMessage(s.cfg.StatusMessage); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "applyProfile",
				"error":    err.Error(),
			}).Warn("Failed to set status message")
		}
	}
}

// Run ticks until ctx is done, input ends, C-d is typed or /quit runs.
// It returns ctx.Err() on cancellation and nil on a user-requested exit.
func (s *Session) Run(ctx context.Context) error {
	s.printer.Info("* Waiting to be online ...")
	s.lastHeartbeat = s.clock.Now()
	for {
		if err := s.tick(); err != nil {
			if errors.Is(err, errStop) {
				logrus.WithField("function", "Run").Info("Session ended by user")
				return nil
			}
			return err
		}
		s.heartbeat()

		timer := time.NewTimer(s.wait())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tick drains input, drains events around one network iteration and
// redraws the prompt.
func (s *Session) tick() error {
	if err := s.drainInput(); err != nil {
		return err
	}
	s.drainEvents()
	s.net.Iterate()
	s.drainEvents()
	if s.stopped {
		return errStop
	}
	if err := s.editor.Render(s.out, s.prompt()); err != nil {
		return fmt.Errorf("render prompt: %w", err)
	}
	return nil
}

// heartbeat logs a liveness line once per heartbeatInterval and reports
// whether it did.
func (s *Session) heartbeat() bool {
	now := s.clock.Now()
	if now.Sub(s.lastHeartbeat) < heartbeatInterval {
		return false
	}
	s.lastHeartbeat = now
	logrus.WithFields(logrus.Fields{
		"function": "heartbeat",
		"contacts": s.book.Len(),
		"requests": s.requests.Len(),
		"network":  s.selfStatus.String(),
	}).Info("Session alive")
	return true
}

func (s *Session) wait() time.Duration {
	d := s.net.IterationInterval()
	if limit := s.cfg.TickMax(); limit > 0 && (d <= 0 || d > limit) {
		d = limit
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

func (s *Session) drainInput() error {
	for {
		n, err := s.in.ReadAvailable(s.readBuf[:])
		for _, b := range s.readBuf[:n] {
			if b == lineedit.KeyCtrlD {
				return errStop
			}
			line, ok := s.editor.Feed(b)
			if !ok {
				continue
			}
			s.handleLine(line)
			if s.stopped {
				return errStop
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errStop
			}
			return fmt.Errorf("read input: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}

func (s *Session) drainEvents() {
	events := s.net.Events()
	for {
		select {
		case ev := <-events:
			s.handleEvent(ev)
		default:
			return
		}
	}
}

func (s *Session) prompt() string {
	if s.talkingTo == nil {
		return colorPrompt + "> " + colorReset
	}
	return fmt.Sprintf(colorPrompt+"%-.12s << "+colorReset, s.talkingTo.DisplayName())
}

// handleLine dispatches one completed editor line.
func (s *Session) handleLine(raw []byte) {
	line := strings.TrimSuffix(string(raw), "\n")

	if s.talkingTo != nil && line != "" && line[0] != '/' {
		s.sendChat(line)
		return
	}

	s.printer.write(colorPrompt + "> " + colorReset + line)
	if line == "" {
		return
	}

	if line[0] == '/' {
		name, rest := poptok(line[1:])
		if cmd := lookupCommand(s.commands, name); cmd != nil {
			args, ok := cmd.split(rest)
			if !ok {
				s.printer.Warn("Wrong number of cmd args")
				return
			}
			logrus.WithFields(logrus.Fields{
				"function": "handleLine",
				"command":  cmd.name,
				"args":     len(args),
			}).Debug("Running command")
			cmd.run(s, args)
			if s.cfg.SaveAfterCommand {
				s.save()
			}
			return
		}
	}

	s.printer.Warn("! Invalid command, use `/help` to get list of available commands.")
}

func (s *Session) sendChat(line string) {
	c := s.talkingTo
	if err := limits.ValidatePlaintextMessage([]byte(line)); err != nil {
		s.printer.Warn(fmt.Sprintf("! Message not sent: %v", err))
		return
	}

	msg := s.chatLine(colorSelf, s.net.Self().Name, line)
	c.Record(msg)
	s.printer.write(msg)

	if err := s.net.SendMessage(c.Number(), line); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "sendChat",
			"friend_id": c.Number(),
			"error":     err.Error(),
		}).Warn("Failed to send message")
		s.printer.Error(fmt.Sprintf("! Send message failed: %v", err))
	}
}

// chatLine formats a history entry: time, sender name, text.
func (s *Session) chatLine(color, name, text string) string {
	return fmt.Sprintf("%s%s  %12.12s | %s%s", color, s.clock.Now().Format("15:04:05"), name, colorReset, text)
}

func (s *Session) save() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.net.Savedata()); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "save",
			"error":    err.Error(),
		}).Error("Failed to save savedata")
		s.printer.Error(fmt.Sprintf("! Save failed: %v", err))
	}
}

// poptok splits off the first blank-separated token of s.
func poptok(s string) (tok, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}
