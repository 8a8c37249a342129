package transfer

import (
	"errors"
	"time"

	"github.com/opd-ai/autotox/peer"
)

// mockTimeProvider provides deterministic time for testing.
type mockTimeProvider struct {
	currentTime time.Time
}

func (m *mockTimeProvider) Now() time.Time {
	return m.currentTime
}

func (m *mockTimeProvider) Since(t time.Time) time.Duration {
	return m.currentTime.Sub(t)
}

func (m *mockTimeProvider) advance(d time.Duration) {
	m.currentTime = m.currentTime.Add(d)
}

func newMockTimeProvider() *mockTimeProvider {
	return &mockTimeProvider{
		currentTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type controlCall struct {
	friend     uint32
	fileNumber uint32
	control    peer.FileControl
}

type chunkCall struct {
	fileNumber uint32
	position   uint64
	data       []byte
}

// mockController records the commands issued by a Machine.
type mockController struct {
	controls   []controlCall
	chunks     []chunkCall
	controlErr error
	sendErr    error
	chunkErr   error
	nextFile   uint32
	sentNames  []string
	sentIDs    [][32]byte
}

func (m *mockController) FileControl(friend, fileNumber uint32, control peer.FileControl) error {
	m.controls = append(m.controls, controlCall{friend: friend, fileNumber: fileNumber, control: control})
	return m.controlErr
}

func (m *mockController) FileSend(friend, kind uint32, size uint64, fileID [32]byte, name string) (uint32, error) {
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.sentNames = append(m.sentNames, name)
	m.sentIDs = append(m.sentIDs, fileID)
	n := m.nextFile
	m.nextFile++
	return n, nil
}

func (m *mockController) FileSendChunk(friend, fileNumber uint32, position uint64, data []byte) error {
	if m.chunkErr != nil {
		return m.chunkErr
	}
	m.chunks = append(m.chunks, chunkCall{fileNumber: fileNumber, position: position, data: append([]byte(nil), data...)})
	return nil
}

func (m *mockController) lastControl() (controlCall, bool) {
	if len(m.controls) == 0 {
		return controlCall{}, false
	}
	return m.controls[len(m.controls)-1], true
}

// mockReporter collects user-visible notices.
type mockReporter struct {
	infos []string
	warns []string
}

func (r *mockReporter) Info(msg string) { r.infos = append(r.infos, msg) }
func (r *mockReporter) Warn(msg string) { r.warns = append(r.warns, msg) }

func (r *mockReporter) lastInfo() string {
	if len(r.infos) == 0 {
		return ""
	}
	return r.infos[len(r.infos)-1]
}

func (r *mockReporter) lastWarn() string {
	if len(r.warns) == 0 {
		return ""
	}
	return r.warns[len(r.warns)-1]
}

// mockOwner is a contact with a transfer table.
type mockOwner struct {
	number uint32
	table  Table
}

func (o *mockOwner) Number() uint32    { return o.number }
func (o *mockOwner) Transfers() *Table { return &o.table }

var errFriendOffline = errors.New("friend not connected")
