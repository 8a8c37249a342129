package peer

import "fmt"

// ConnectionStatus is the reachability of the local node or of a contact.
type ConnectionStatus uint8

const (
	// ConnectionNone means offline.
	ConnectionNone ConnectionStatus = iota
	// ConnectionTCP means online through a TCP relay.
	ConnectionTCP
	// ConnectionUDP means online through a direct UDP path.
	ConnectionUDP
)

// Short returns the compact form used in contact listings.
func (s ConnectionStatus) Short() string {
	switch s {
	case ConnectionTCP:
		return "OnT"
	case ConnectionUDP:
		return "OnU"
	default:
		return "Of"
	}
}

// String returns a readable form of the status.
func (s ConnectionStatus) String() string {
	switch s {
	case ConnectionNone:
		return "offline"
	case ConnectionTCP:
		return "online (TCP)"
	case ConnectionUDP:
		return "online (UDP)"
	default:
		return fmt.Sprintf("ConnectionStatus(%d)", uint8(s))
	}
}

// Online reports whether the status is anything but ConnectionNone.
func (s ConnectionStatus) Online() bool { return s != ConnectionNone }

// Event is a notification published by a Network.
type Event interface {
	event()
}

// MessageReceived carries a chat message from a contact.
type MessageReceived struct {
	Friend uint32
	Text   string
	Action bool
}

// FileOffered announces an incoming file transfer.
type FileOffered struct {
	Friend     uint32
	FileNumber uint32
	Kind       uint32
	Size       uint64
	Name       string
	// FileID is the peer-supplied content identifier, zero when the
	// network does not expose it.
	FileID [32]byte
}

// ChunkReceived carries file data for an incoming transfer. Empty Data
// marks the end of the file.
type ChunkReceived struct {
	Friend     uint32
	FileNumber uint32
	Position   uint64
	Data       []byte
}

// ChunkRequested asks for file data of an outgoing transfer. A zero Length
// marks the end of the file.
type ChunkRequested struct {
	Friend     uint32
	FileNumber uint32
	Position   uint64
	Length     int
}

// ConnectivityChanged reports a contact's new connection status.
type ConnectivityChanged struct {
	Friend uint32
	Status ConnectionStatus
}

// SelfConnectivityChanged reports the local node's new connection status.
type SelfConnectivityChanged struct {
	Status ConnectionStatus
}

// ContactRequested carries an incoming contact request.
type ContactRequested struct {
	PublicKey [32]byte
	Message   string
}

// NameChanged reports a contact's new display name.
type NameChanged struct {
	Friend uint32
	Name   string
}

// StatusMessageChanged reports a contact's new status message.
type StatusMessageChanged struct {
	Friend  uint32
	Message string
}

func (MessageReceived) event()         {}
func (FileOffered) event()             {}
func (ChunkReceived) event()           {}
func (ChunkRequested) event()          {}
func (ConnectivityChanged) event()     {}
func (SelfConnectivityChanged) event() {}
func (ContactRequested) event()        {}
func (NameChanged) event()             {}
func (StatusMessageChanged) event()    {}
