package toxnet

import (
	"fmt"
	"sort"
	"time"

	"github.com/opd-ai/toxcore"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/peer"
)

// DefaultEventBuffer is the capacity of the event channel.
const DefaultEventBuffer = 256

// Options configures a Network.
type Options struct {
	// Savedata restores a previous identity and friend list when non-empty.
	Savedata    []byte
	StartPort   uint16
	EndPort     uint16
	EventBuffer int
}

// Network adapts a *toxcore.Tox to peer.Network.
type Network struct {
	tox    *toxcore.Tox
	events chan peer.Event
}

var _ peer.Network = (*Network)(nil)

// New creates a toxcore instance and registers the event callbacks.
func New(opts Options) (*Network, error) {
	options := toxcore.NewOptions()
	if opts.StartPort != 0 {
		options.StartPort = opts.StartPort
	}
	if opts.EndPort != 0 {
		options.EndPort = opts.EndPort
	}
	if len(opts.Savedata) > 0 {
		options.SavedataType = toxcore.SaveDataTypeToxSave
		options.SavedataData = opts.Savedata
	}

	tox, err := toxcore.New(options)
	if err != nil {
		return nil, fmt.Errorf("create tox instance: %w", err)
	}

	n := newNetwork(tox, opts.EventBuffer)
	n.register()

	logrus.WithFields(logrus.Fields{
		"function":   "New",
		"address":    tox.SelfGetAddress(),
		"start_port": options.StartPort,
		"end_port":   options.EndPort,
		"restored":   len(opts.Savedata) > 0,
	}).Info("Tox instance created")

	return n, nil
}

func newNetwork(tox *toxcore.Tox, buffer int) *Network {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Network{tox: tox, events: make(chan peer.Event, buffer)}
}

func (n *Network) register() {
	n.tox.OnFriendMessageDetailed(func(friendID uint32, message string, messageType toxcore.MessageType) {
		n.publish(peer.MessageReceived{
			Friend: friendID,
			Text:   message,
			Action: messageType == toxcore.MessageTypeAction,
		})
	})
	n.tox.OnFriendRequest(func(publicKey [32]byte, message string) {
		n.publish(peer.ContactRequested{PublicKey: publicKey, Message: message})
	})
	n.tox.OnFriendConnectionStatus(func(friendID uint32, status toxcore.ConnectionStatus) {
		n.publish(peer.ConnectivityChanged{Friend: friendID, Status: connectionStatus(status)})
	})
	n.tox.OnConnectionStatus(func(status toxcore.ConnectionStatus) {
		n.publish(peer.SelfConnectivityChanged{Status: connectionStatus(status)})
	})
	n.tox.OnFriendName(func(friendID uint32, name string) {
		n.publish(peer.NameChanged{Friend: friendID, Name: name})
	})
	n.tox.OnFriendStatusMessage(func(friendID uint32, message string) {
		n.publish(peer.StatusMessageChanged{Friend: friendID, Message: message})
	})
	n.tox.OnFileRecv(func(friendID, fileID, kind uint32, size uint64, filename string) {
		n.publish(peer.FileOffered{
			Friend:     friendID,
			FileNumber: fileID,
			Kind:       kind,
			Size:       size,
			Name:       filename,
		})
	})
	n.tox.OnFileRecvChunk(func(friendID, fileID uint32, position uint64, data []byte) {
		// toxcore may reuse data after the callback returns.
		buf := make([]byte, len(data))
		copy(buf, data)
		n.publish(peer.ChunkReceived{Friend: friendID, FileNumber: fileID, Position: position, Data: buf})
	})
	n.tox.OnFileChunkRequest(func(friendID, fileID uint32, position uint64, length int) {
		n.publish(peer.ChunkRequested{Friend: friendID, FileNumber: fileID, Position: position, Length: length})
	})
}

// publish queues ev without blocking the caller. Events that do not fit
// the buffer are dropped.
func (n *Network) publish(ev peer.Event) {
	select {
	case n.events <- ev:
	default:
		logrus.WithFields(logrus.Fields{
			"function": "publish",
			"event":    fmt.Sprintf("%T", ev),
			"buffer":   cap(n.events),
		}).Warn("Event channel full, dropping event")
	}
}

// Events returns the channel the callbacks publish on.
func (n *Network) Events() <-chan peer.Event { return n.events }

// Iterate runs one toxcore event loop iteration.
func (n *Network) Iterate() { n.tox.Iterate() }

// IterationInterval returns the pause toxcore wants between iterations.
func (n *Network) IterationInterval() time.Duration { return n.tox.IterationInterval() }

// SendMessage sends a normal chat message.
func (n *Network) SendMessage(friend uint32, text string) error {
	return n.tox.SendFriendMessage(friend, text)
}

// FileControl sends a transfer control signal. ControlNone is a no-op.
func (n *Network) FileControl(friend, fileNumber uint32, control peer.FileControl) error {
	c, ok := fileControl(control)
	if !ok {
		return nil
	}
	return n.tox.FileControl(friend, fileNumber, c)
}

// FileSend offers a file to friend.
func (n *Network) FileSend(friend, kind uint32, size uint64, fileID [32]byte, name string) (uint32, error) {
	return n.tox.FileSend(friend, kind, size, fileID, name)
}

// FileSendChunk sends one chunk of an outgoing transfer.
func (n *Network) FileSendChunk(friend, fileNumber uint32, position uint64, data []byte) error {
	return n.tox.FileSendChunk(friend, fileNumber, position, data)
}

// AddContact sends a contact request to a Tox address.
func (n *Network) AddContact(address, message string) (uint32, error) {
	return n.tox.AddFriend(address, message)
}

// AcceptContact adds a contact by public key without sending a request.
func (n *Network) AcceptContact(publicKey [32]byte) (uint32, error) {
	return n.tox.AddFriendByPublicKey(publicKey)
}

// DeleteContact removes a contact.
func (n *Network) DeleteContact(friend uint32) error {
	return n.tox.DeleteFriend(friend)
}

// Contacts returns the friend list ordered by friend number.
func (n *Network) Contacts() []peer.ContactInfo {
	return contactInfos(n.tox.GetFriends())
}

// Self describes the local node.
func (n *Network) Self() peer.SelfInfo {
	return peer.SelfInfo{
		Address:       n.tox.SelfGetAddress(),
		PublicKey:     n.tox.SelfGetPublicKey(),
		Name:          n.tox.SelfGetName(),
		StatusMessage: n.tox.SelfGetStatusMessage(),
		Status:        connectionStatus(n.tox.SelfGetConnectionStatus()),
	}
}

// SetName sets the local display name.
func (n *Network) SetName(name string) error { return n.tox.SelfSetName(name) }

// SetStatusMessage sets the local status message.
func (n *Network) SetStatusMessage(message string) error {
	return n.tox.SelfSetStatusMessage(message)
}

// Savedata serializes the identity and friend list.
func (n *Network) Savedata() []byte { return n.tox.GetSavedata() }

// Bootstrap contacts a DHT node.
func (n *Network) Bootstrap(node peer.BootstrapNode) error {
	if err := n.tox.Bootstrap(node.Address, node.Port, node.PublicKey); err != nil {
		return fmt.Errorf("bootstrap %s:%d: %w", node.Address, node.Port, err)
	}
	return nil
}

// Close shuts the toxcore instance down.
func (n *Network) Close() error {
	n.tox.Kill()
	logrus.WithField("function", "Close").Info("Tox instance stopped")
	return nil
}

func connectionStatus(s toxcore.ConnectionStatus) peer.ConnectionStatus {
	switch s {
	case toxcore.ConnectionTCP:
		return peer.ConnectionTCP
	case toxcore.ConnectionUDP:
		return peer.ConnectionUDP
	default:
		return peer.ConnectionNone
	}
}

func fileControl(c peer.FileControl) (toxcore.FileControl, bool) {
	switch c {
	case peer.ControlResume:
		return toxcore.FileControlResume, true
	case peer.ControlPause:
		return toxcore.FileControlPause, true
	case peer.ControlCancel:
		return toxcore.FileControlCancel, true
	default:
		return 0, false
	}
}

func contactInfos(friends map[uint32]*toxcore.Friend) []peer.ContactInfo {
	infos := make([]peer.ContactInfo, 0, len(friends))
	for number, f := range friends {
		if f == nil {
			continue
		}
		infos = append(infos, peer.ContactInfo{
			Number:        number,
			PublicKey:     f.PublicKey,
			Name:          f.Name,
			StatusMessage: f.StatusMessage,
			Status:        connectionStatus(f.ConnectionStatus),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Number < infos[j].Number })
	return infos
}
