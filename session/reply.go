package session

import (
	"net"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/contact"
	"github.com/opd-ai/autotox/limits"
)

// addrLister reports the addresses of the local network interfaces.
type addrLister func() ([]net.Addr, error)

// replyAddresses answers c with the host's interface addresses, one per
// line, as far as they fit a single message.
func (s *Session) replyAddresses(c *contact.Contact) {
	addrs, err := s.interfaceAddrs()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "replyAddresses",
			"friend_id": c.Number(),
			"error":     err.Error(),
		}).Warn("Failed to list interface addresses")
		return
	}

	text := addressReply(addrs)
	if text == "" {
		logrus.WithFields(logrus.Fields{
			"function":  "replyAddresses",
			"friend_id": c.Number(),
		}).Debug("No interface addresses to report")
		return
	}
	if err := s.net.SendMessage(c.Number(), text); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "replyAddresses",
			"friend_id": c.Number(),
			"error":     err.Error(),
		}).Warn("Failed to send address reply")
		return
	}
	logrus.WithFields(logrus.Fields{
		"function":  "replyAddresses",
		"friend_id": c.Number(),
		"addresses": len(addrs),
	}).Info("Sent address reply")
}

// addressReply renders addrs as "inet <addr>" lines, dropping the lines
// that would push the message past limits.MaxPlaintextMessage.
func addressReply(addrs []net.Addr) string {
	var b strings.Builder
	for _, a := range addrs {
		line := "inet " + a.String()
		if b.Len() > 0 {
			line = "\n" + line
		}
		if b.Len()+len(line) > limits.MaxPlaintextMessage {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
