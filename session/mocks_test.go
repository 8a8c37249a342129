package session

import (
	"errors"
	"sync"
	"time"

	"github.com/opd-ai/autotox/peer"
)

// mockTimeProvider provides deterministic time for testing.
type mockTimeProvider struct {
	currentTime time.Time
}

func (m *mockTimeProvider) Now() time.Time { return m.currentTime }

func (m *mockTimeProvider) Since(t time.Time) time.Duration { return m.currentTime.Sub(t) }

func newMockTimeProvider() *mockTimeProvider {
	return &mockTimeProvider{currentTime: time.Date(2026, 1, 1, 12, 34, 56, 0, time.UTC)}
}

// fakeInput serves queued chunks, one per ReadAvailable call, then reports
// nothing pending (or err once exhausted when set).
type fakeInput struct {
	chunks [][]byte
	err    error
	reads  int
}

func (f *fakeInput) push(s string) { f.chunks = append(f.chunks, []byte(s)) }

func (f *fakeInput) ReadAvailable(buf []byte) (int, error) {
	f.reads++
	if len(f.chunks) == 0 {
		return 0, f.err
	}
	n := copy(buf, f.chunks[0])
	if n < len(f.chunks[0]) {
		f.chunks[0] = f.chunks[0][n:]
	} else {
		f.chunks = f.chunks[1:]
	}
	return n, nil
}

// fakeStore records saved savedata.
type fakeStore struct {
	saves [][]byte
	err   error
}

func (f *fakeStore) Save(data []byte) error {
	f.saves = append(f.saves, data)
	return f.err
}

type sentMessage struct {
	friend uint32
	text   string
}

type controlCall struct {
	friend     uint32
	fileNumber uint32
	control    peer.FileControl
}

// fakeNetwork is an in-memory peer.Network.
type fakeNetwork struct {
	mu sync.Mutex

	events     chan peer.Event
	iterations int
	interval   time.Duration

	self     peer.SelfInfo
	contacts []peer.ContactInfo

	messages   []sentMessage
	controls   []controlCall
	added      []string
	accepted   [][32]byte
	deleted    []uint32
	nextFriend uint32
	nextFile   uint32
	savedata   []byte

	sendErr    error
	addErr     error
	controlErr error
}

var _ peer.Network = (*fakeNetwork)(nil)

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		events:     make(chan peer.Event, 64),
		interval:   time.Millisecond,
		self:       peer.SelfInfo{Address: testAddress, Name: "me"},
		nextFriend: 10,
		savedata:   []byte("savedata"),
	}
}

func (f *fakeNetwork) emit(ev peer.Event) { f.events <- ev }

func (f *fakeNetwork) Events() <-chan peer.Event { return f.events }

func (f *fakeNetwork) Iterate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.iterations++
}

func (f *fakeNetwork) IterationInterval() time.Duration { return f.interval }

func (f *fakeNetwork) SendMessage(friend uint32, text string) error {
	f.messages = append(f.messages, sentMessage{friend: friend, text: text})
	return f.sendErr
}

func (f *fakeNetwork) FileControl(friend, fileNumber uint32, control peer.FileControl) error {
	f.controls = append(f.controls, controlCall{friend: friend, fileNumber: fileNumber, control: control})
	return f.controlErr
}

func (f *fakeNetwork) FileSend(friend, kind uint32, size uint64, fileID [32]byte, name string) (uint32, error) {
	n := f.nextFile
	f.nextFile++
	return n, nil
}

func (f *fakeNetwork) FileSendChunk(friend, fileNumber uint32, position uint64, data []byte) error {
	return nil
}

func (f *fakeNetwork) AddContact(address, message string) (uint32, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.added = append(f.added, address+"|"+message)
	n := f.nextFriend
	f.nextFriend++
	return n, nil
}

func (f *fakeNetwork) AcceptContact(publicKey [32]byte) (uint32, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.accepted = append(f.accepted, publicKey)
	n := f.nextFriend
	f.nextFriend++
	return n, nil
}

func (f *fakeNetwork) DeleteContact(friend uint32) error {
	f.deleted = append(f.deleted, friend)
	return nil
}

func (f *fakeNetwork) Contacts() []peer.ContactInfo { return f.contacts }

func (f *fakeNetwork) Self() peer.SelfInfo { return f.self }

func (f *fakeNetwork) SetName(name string) error {
	f.self.Name = name
	return nil
}

func (f *fakeNetwork) SetStatusMessage(message string) error {
	f.self.StatusMessage = message
	return nil
}

func (f *fakeNetwork) Savedata() []byte { return f.savedata }

func (f *fakeNetwork) Bootstrap(node peer.BootstrapNode) error { return nil }

func (f *fakeNetwork) Close() error { return nil }

func (f *fakeNetwork) iterationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.iterations
}

var (
	errFriendOffline = errors.New("friend not connected")
	errBrokenInput   = errors.New("input device gone")
)
