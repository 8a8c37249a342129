package session

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/contact"
	"github.com/opd-ai/autotox/limits"
	"github.com/opd-ai/autotox/transfer"
)

// argsRest is the maximum argument count of commands whose arguments are
// all optional.
const argsRest = 10

// defaultRequestMessage accompanies /add when no message is given.
const defaultRequestMessage = "Hello from autotox"

// command is one entry of the command table. A command receives between
// minArgs and maxArgs blank-separated arguments; the last one it can take
// extends to the end of the line.
type command struct {
	name    string
	usage   string
	minArgs int
	maxArgs int
	run     func(s *Session, args []string)
}

func commandTable() []command {
	return []command{
		{"guide", "- print the guide.", 0, 0, (*Session).cmdGuide},
		{"help", "- print this message.", 0, 0, (*Session).cmdHelp},
		{"save", "- save your data.", 0, 0, (*Session).cmdSave},
		{"info", "[<contact_index>] - show one contact's info, or your own if <contact_index> is empty.", 0, argsRest, (*Session).cmdInfo},
		{"setname", "<name> - set your name.", 1, 1, (*Session).cmdSetName},
		{"setstmsg", "<status_message> - set your status message.", 1, 1, (*Session).cmdSetStatusMessage},
		{"add", "<toxid> [<msg>] - add a friend.", 1, 2, (*Session).cmdAdd},
		{"del", "<contact_index> - delete a contact.", 1, 1, (*Session).cmdDel},
		{"contacts", "- list your contacts.", 0, 0, (*Session).cmdContacts},
		{"go", "[<contact_index>] - talk to a contact, or return to command mode if <contact_index> is empty.", 0, argsRest, (*Session).cmdGo},
		{"history", "[<n>] - print the last <n> messages of the current chat.", 0, argsRest, (*Session).cmdHistory},
		{"accept", "[<request_index>] - accept or list (if no <request_index> was provided) friend requests.", 0, argsRest, (*Session).cmdAccept},
		{"deny", "[<request_index>] - deny or list (if no <request_index> was provided) friend requests.", 0, argsRest, (*Session).cmdDeny},
		{"savefile", "<file_index> - accept an incoming file from the current contact.", 0, argsRest, (*Session).cmdSaveFile},
		{"sendfile", "<path> - send a file to the current contact.", 1, 1, (*Session).cmdSendFile},
		{"transfers", "- list active file transfers.", 0, 0, (*Session).cmdTransfers},
		{"cancel", "<send|recv> <file_index> - cancel a file transfer.", 2, 2, (*Session).cmdCancel},
		{"pause", "[<send|recv>] <file_index> - pause a file transfer (recv by default).", 1, 2, (*Session).cmdPause},
		{"resume", "[<send|recv>] <file_index> - resume a paused file transfer (recv by default).", 1, 2, (*Session).cmdResume},
		{"quit", "- exit autotox.", 0, 0, (*Session).cmdQuit},
	}
}

func lookupCommand(cmds []command, name string) *command {
	for i := range cmds {
		if cmds[i].name == name {
			return &cmds[i]
		}
	}
	return nil
}

// split tokenizes the argument part of a command line.
func (c *command) split(rest string) ([]string, bool) {
	var args []string
	for rest != "" && len(args) < c.maxArgs {
		if len(args) == c.maxArgs-1 {
			args = append(args, rest)
			break
		}
		var tok string
		tok, rest = poptok(rest)
		args = append(args, tok)
	}
	if len(args) < c.minArgs {
		return nil, false
	}
	return args, true
}

func (s *Session) cmdGuide(_ []string) {
	p := s.printer
	p.Printf("This program is a minimal workable implementation of a Tox client.")
	p.Printf("It favours simplicity over robustness and efficiency.\n")

	p.Printf("Commands are any input lines with leading `/`.")
	p.Printf("Command args are separated by blanks,")
	p.Printf("while some commands accept any-character strings, like `/setname` and `/setstmsg`.\n")

	p.Printf("Use `/setname <YOUR NAME>` to set your name.")
	p.Printf("Use `/info` to see your Name, Tox Id and Network Connection.")
	p.Printf("Use `/contacts` to list friends, and use `/go <TARGET>` to talk to one of them.")
	p.Printf("Use `/sendfile <path>` and `/savefile <index>` to exchange files with the current contact.")
	p.Printf("Finally, use `/help` to get a list of available commands.\n")

	p.Printf("HAVE FUN!\n")
}

func (s *Session) cmdHelp(_ []string) {
	for _, c := range s.commands {
		s.printer.Printf("%-16s%s", c.name, c.usage)
	}
}

func (s *Session) cmdSave(_ []string) {
	if s.store == nil {
		s.printer.Warn("! Saving is disabled.")
		return
	}
	s.save()
}

func (s *Session) cmdInfo(args []string) {
	if len(args) == 0 {
		self := s.net.Self()
		s.printer.Printf("%-15s%s", "Name:", self.Name)
		s.printer.Printf("%-15s%s", "Tox ID:", self.Address)
		s.printer.Printf("%-15s%s", "Public Key:", strings.ToUpper(hex.EncodeToString(self.PublicKey[:])))
		s.printer.Printf("%-15s%s", "Status Msg:", self.StatusMessage)
		s.printer.Printf("%-15s%s", "Network:", s.selfStatus)
		return
	}

	c := s.contactArg(args[0])
	if c == nil {
		return
	}
	s.printer.Printf("%-15s%s", "Name:", c.DisplayName())
	s.printer.Printf("%-15s%s", "Public Key:", strings.ToUpper(hex.EncodeToString(c.PublicKey[:])))
	s.printer.Printf("%-15s%s", "Status Msg:", c.StatusMessage)
	s.printer.Printf("%-15s%s", "Network:", c.ConnectionStatus)
}

func (s *Session) cmdSetName(args []string) {
	name := args[0]
	if err := limits.ValidateName([]byte(name)); err != nil {
		s.printer.Warn(fmt.Sprintf("! Invalid name: %v", err))
		return
	}
	if err := s.net.SetName(name); err != nil {
		s.printer.Error(fmt.Sprintf("! Set name failed: %v", err))
		return
	}
	s.printer.Info(fmt.Sprintf("* Name set to %s", name))
}

func (s *Session) cmdSetStatusMessage(args []string) {
	msg := args[0]
	if err := limits.ValidateStatusMessage([]byte(msg)); err != nil {
		s.printer.Warn(fmt.Sprintf("! Invalid status message: %v", err))
		return
	}
	if err := s.net.SetStatusMessage(msg); err != nil {
		s.printer.Error(fmt.Sprintf("! Set status message failed: %v", err))
		return
	}
	s.printer.Info(fmt.Sprintf("* Status message set to %s", msg))
}

func (s *Session) cmdAdd(args []string) {
	address := args[0]
	raw, err := hex.DecodeString(address)
	if err != nil || len(address) != limits.ToxIDHexLength {
		s.printer.Warn("! Invalid Tox ID")
		return
	}

	msg := defaultRequestMessage
	if len(args) > 1 {
		msg = args[1]
	}
	if err := limits.ValidateRequestMessage([]byte(msg)); err != nil {
		s.printer.Warn(fmt.Sprintf("! Invalid request message: %v", err))
		return
	}

	number, err := s.net.AddContact(address, msg)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "cmdAdd",
			"error":    err.Error(),
		}).Warn("Failed to add contact")
		s.printer.Error(fmt.Sprintf("! Add friend failed: %v", err))
		return
	}

	var key [32]byte
	copy(key[:], raw)
	s.book.Add(number, key)
	s.printer.Info(fmt.Sprintf("* Friend request sent, contact index %d", number))
}

func (s *Session) cmdDel(args []string) {
	c := s.contactArg(args[0])
	if c == nil {
		return
	}
	if n := s.machine.CloseAll(c); n > 0 {
		logrus.WithFields(logrus.Fields{
			"function":  "cmdDel",
			"friend_id": c.Number(),
			"closed":    n,
		}).Info("Closed transfers of deleted contact")
	}
	if err := s.net.DeleteContact(c.Number()); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "cmdDel",
			"friend_id": c.Number(),
			"error":     err.Error(),
		}).Warn("Network refused contact deletion")
	}
	s.book.Remove(c.Number())
	if s.talkingTo == c {
		s.talkingTo = nil
	}
	s.printer.Info(fmt.Sprintf("* Deleted %s", c.DisplayName()))
}

func (s *Session) cmdContacts(_ []string) {
	s.printer.Printf("#Friends(contact_index|name|connection|status message):\n")
	for _, c := range s.book.All() {
		s.printer.Printf("%3d  %15.15s  %12.12s  %s", c.Number(), c.DisplayName(), c.ConnectionStatus.Short(), c.StatusMessage)
	}
}

func (s *Session) cmdGo(args []string) {
	if len(args) == 0 {
		s.talkingTo = nil
		return
	}
	c := s.contactArg(args[0])
	if c == nil {
		return
	}
	s.talkingTo = c
	for _, line := range c.Recent(s.cfg.HistoryCount) {
		s.printer.write(line)
	}
}

func (s *Session) cmdHistory(args []string) {
	c := s.currentContact()
	if c == nil {
		return
	}
	n := s.cfg.HistoryCount
	if len(args) > 0 {
		v, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || v < 0 {
			s.printer.Warn("^ Invalid history count")
			return
		}
		n = v
	}
	for _, line := range c.Recent(n) {
		s.printer.write(line)
	}
}

func (s *Session) cmdAccept(args []string) { s.decideRequest(args, true) }

func (s *Session) cmdDeny(args []string) { s.decideRequest(args, false) }

func (s *Session) decideRequest(args []string, accept bool) {
	if len(args) == 0 {
		for _, req := range s.requests.List() {
			s.printer.Printf("%-9d%-12s%s", req.ID, "FRIEND", req.Message)
		}
		return
	}

	id, ok := parseNumber(args[0])
	if !ok {
		s.printer.Warn("Invalid request index")
		return
	}
	if accept {
		s.acceptRequest(id)
		return
	}
	if _, ok := s.requests.Take(id); !ok {
		s.printer.Warn("Invalid request index")
		return
	}
	s.printer.Info(fmt.Sprintf("* Friend request %d denied", id))
}

// acceptRequest removes request id from the inbox and adds its sender.
func (s *Session) acceptRequest(id uint32) *contact.Contact {
	req, ok := s.requests.Take(id)
	if !ok {
		s.printer.Warn("Invalid request index")
		return nil
	}
	number, err := s.net.AcceptContact(req.SenderPublicKey)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "acceptRequest",
			"request_id": id,
			"error":      err.Error(),
		}).Warn("Failed to accept contact request")
		s.printer.Error(fmt.Sprintf("! Accept friend request failed: %v", err))
		return nil
	}
	c := s.book.Add(number, req.SenderPublicKey)
	s.printer.Info(fmt.Sprintf("* Friend request %d accepted, contact index %d", id, number))
	return c
}

func (s *Session) cmdSaveFile(args []string) {
	if len(args) == 0 {
		s.printer.Warn("File ID required.")
		return
	}
	c := s.currentContact()
	if c == nil {
		return
	}
	index, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || index < 0 || index >= transfer.MaxFiles {
		s.printer.Warn("No pending file transfers with that ID.")
		return
	}
	_ = s.machine.Accept(c, index)
}

func (s *Session) cmdSendFile(args []string) {
	c := s.currentContact()
	if c == nil {
		return
	}
	if _, err := s.machine.Send(c, strings.TrimSpace(args[0])); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "cmdSendFile",
			"friend_id": c.Number(),
			"error":     err.Error(),
		}).Debug("File offer not sent")
	}
}

func (s *Session) cmdTransfers(_ []string) {
	if c := s.talkingTo; c != nil {
		s.listTransfers(c, false)
		return
	}
	listed := false
	for _, c := range s.book.All() {
		listed = s.listTransfers(c, true) || listed
	}
	if !listed {
		s.printer.Info("No active file transfers.")
	}
}

func (s *Session) listTransfers(c *contact.Contact, withHeader bool) bool {
	list := s.machine.List(c)
	if len(list) == 0 {
		if !withHeader {
			s.printer.Info("No active file transfers.")
		}
		return false
	}
	if withHeader {
		s.printer.Printf("%d %s:", c.Number(), c.DisplayName())
	}
	for _, sum := range list {
		s.printer.Printf("%s", transfer.FormatSummary(sum))
	}
	return true
}

func (s *Session) cmdCancel(args []string) {
	c := s.currentContact()
	if c == nil {
		return
	}
	dir, index, ok := s.transferArgs(args)
	if !ok {
		return
	}
	_ = s.machine.Cancel(c, index, dir)
}

func (s *Session) cmdPause(args []string) {
	c := s.currentContact()
	if c == nil {
		return
	}
	dir, index, ok := s.transferArgs(args)
	if !ok {
		return
	}
	_ = s.machine.Pause(c, index, dir)
}

func (s *Session) cmdResume(args []string) {
	c := s.currentContact()
	if c == nil {
		return
	}
	dir, index, ok := s.transferArgs(args)
	if !ok {
		return
	}
	_ = s.machine.Resume(c, index, dir)
}

func (s *Session) cmdQuit(_ []string) {
	s.stopped = true
}

// transferArgs parses "[<send|recv>] <index>"; the direction defaults to
// receive.
func (s *Session) transferArgs(args []string) (transfer.Direction, int, bool) {
	dir := transfer.DirectionReceive
	indexArg := args[len(args)-1]
	if len(args) > 1 {
		d, err := transfer.ParseDirection(args[0])
		if err != nil {
			s.printer.Warn("Invalid direction, use `send` or `recv`.")
			return 0, 0, false
		}
		dir = d
	}
	index, err := strconv.Atoi(strings.TrimSpace(indexArg))
	if err != nil || index < 0 || index >= transfer.MaxFiles {
		s.printer.Warn("No active file transfers with that ID.")
		return 0, 0, false
	}
	return dir, index, true
}

// contactArg resolves a contact index argument, warning when it is invalid.
func (s *Session) contactArg(arg string) *contact.Contact {
	number, ok := parseNumber(arg)
	if ok {
		if c := s.book.Get(number); c != nil {
			return c
		}
	}
	s.printer.Warn("^ Invalid contact index")
	return nil
}

// currentContact returns the contact being talked to, warning when there is
// none.
func (s *Session) currentContact() *contact.Contact {
	if s.talkingTo == nil {
		s.printer.Warn("! You are not talking to someone. Use `/go <contact_index>` first.")
	}
	return s.talkingTo
}

func parseNumber(arg string) (uint32, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
