package contact

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/peer"
	"github.com/opd-ai/autotox/transfer"
)

// MaxHistory bounds the chat history kept per contact.
const MaxHistory = 1000

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

var defaultTimeProvider TimeProvider = DefaultTimeProvider{}

// Contact is a remote party together with the state the session keeps for
// it: chat history and the transfer table.
type Contact struct {
	PublicKey        [32]byte
	Name             string
	StatusMessage    string
	ConnectionStatus peer.ConnectionStatus
	LastSeen         time.Time

	number       uint32
	history      []string
	transfers    transfer.Table
	timeProvider TimeProvider
}

// New creates a contact with the given network-assigned number.
func New(number uint32, publicKey [32]byte) *Contact {
	return NewWithTimeProvider(number, publicKey, defaultTimeProvider)
}

// NewWithTimeProvider creates a contact with a custom time provider.
func NewWithTimeProvider(number uint32, publicKey [32]byte, tp TimeProvider) *Contact {
	if tp == nil {
		tp = defaultTimeProvider
	}

	logrus.WithFields(logrus.Fields{
		"function":   "New",
		"number":     number,
		"public_key": publicKey[:8],
	}).Debug("Creating contact")

	return &Contact{
		PublicKey:        publicKey,
		ConnectionStatus: peer.ConnectionNone,
		LastSeen:         tp.Now(),
		number:           number,
		timeProvider:     tp,
	}
}

// Number returns the network-assigned contact number.
func (c *Contact) Number() uint32 { return c.number }

// Transfers returns the contact's transfer table.
func (c *Contact) Transfers() *transfer.Table { return &c.transfers }

// DisplayName returns the name, or a placeholder while it is unknown.
func (c *Contact) DisplayName() string {
	if c.Name == "" {
		return "(unknown)"
	}
	return c.Name
}

// SetConnectionStatus records a connectivity change.
func (c *Contact) SetConnectionStatus(status peer.ConnectionStatus) {
	logrus.WithFields(logrus.Fields{
		"function":              "SetConnectionStatus",
		"number":                c.number,
		"old_connection_status": c.ConnectionStatus.String(),
		"new_connection_status": status.String(),
	}).Info("Contact connection status updated")

	c.ConnectionStatus = status
	c.LastSeen = c.timeProvider.Now()
}

// IsOnline checks if the contact is currently reachable.
func (c *Contact) IsOnline() bool {
	return c.ConnectionStatus.Online()
}

// LastSeenDuration returns the duration since the contact's last
// connectivity change.
func (c *Contact) LastSeenDuration() time.Duration {
	return c.timeProvider.Now().Sub(c.LastSeen)
}

// Record appends a line to the chat history, dropping the oldest entries
// beyond MaxHistory.
func (c *Contact) Record(line string) {
	c.history = append(c.history, line)
	if over := len(c.history) - MaxHistory; over > 0 {
		c.history = append(c.history[:0], c.history[over:]...)
	}
}

// Recent returns up to n of the newest history entries, oldest first.
func (c *Contact) Recent(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(c.history) {
		n = len(c.history)
	}
	out := make([]string, n)
	copy(out, c.history[len(c.history)-n:])
	return out
}

// HistoryLen returns the number of recorded history entries.
func (c *Contact) HistoryLen() int { return len(c.history) }
