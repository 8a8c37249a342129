package peer

import "time"

// FileControl is a control signal for a file transfer.
type FileControl uint8

const (
	// ControlResume accepts an offer or resumes a paused transfer.
	ControlResume FileControl = iota
	// ControlPause pauses a running transfer.
	ControlPause
	// ControlCancel aborts a transfer.
	ControlCancel
	// ControlNone means no signal is sent to the peer.
	ControlNone
)

// String returns the lowercase control name.
func (c FileControl) String() string {
	switch c {
	case ControlResume:
		return "resume"
	case ControlPause:
		return "pause"
	case ControlCancel:
		return "cancel"
	case ControlNone:
		return "none"
	default:
		return "unknown"
	}
}

// FileKindData is the transfer kind for ordinary files.
const FileKindData uint32 = 0

// ContactInfo is a snapshot of a contact as known to the network.
type ContactInfo struct {
	Number        uint32
	PublicKey     [32]byte
	Name          string
	StatusMessage string
	Status        ConnectionStatus
}

// SelfInfo describes the local node.
type SelfInfo struct {
	Address       string
	PublicKey     [32]byte
	Name          string
	StatusMessage string
	Status        ConnectionStatus
}

// BootstrapNode is a well-known DHT node used to join the network.
type BootstrapNode struct {
	Address   string `mapstructure:"address" yaml:"address"`
	Port      uint16 `mapstructure:"port" yaml:"port"`
	PublicKey string `mapstructure:"public_key" yaml:"public_key"`
}

// Network is the command surface of a peer-to-peer network stack.
//
// Implementations publish their notifications on Events. All other methods
// are called from the session goroutine only.
type Network interface {
	Events() <-chan Event
	Iterate()
	IterationInterval() time.Duration

	SendMessage(friend uint32, text string) error
	FileControl(friend, fileNumber uint32, control FileControl) error
	FileSend(friend, kind uint32, size uint64, fileID [32]byte, name string) (uint32, error)
	FileSendChunk(friend, fileNumber uint32, position uint64, data []byte) error

	AddContact(address, message string) (uint32, error)
	AcceptContact(publicKey [32]byte) (uint32, error)
	DeleteContact(friend uint32) error
	Contacts() []ContactInfo

	Self() SelfInfo
	SetName(name string) error
	SetStatusMessage(message string) error
	Savedata() []byte
	Bootstrap(node BootstrapNode) error
	Close() error
}
