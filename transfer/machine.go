package transfer

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/peer"
)

// MaxChunkSize bounds a single chunk in either direction.
const MaxChunkSize = 65536

// ErrNoTransfer indicates that no active slot matches the requested index.
var ErrNoTransfer = errors.New("no such file transfer")

// ErrNotPending indicates an accept for a slot that is not waiting for acceptance.
var ErrNotPending = errors.New("no pending file transfer with that ID")

// Controller is the part of the network a Machine drives.
type Controller interface {
	FileControl(friend, fileNumber uint32, control peer.FileControl) error
	FileSend(friend, kind uint32, size uint64, fileID [32]byte, name string) (uint32, error)
	FileSendChunk(friend, fileNumber uint32, position uint64, data []byte) error
}

// Owner is a contact owning a transfer table.
type Owner interface {
	Number() uint32
	Transfers() *Table
}

// Reporter receives user-visible transfer notices.
type Reporter interface {
	Info(msg string)
	Warn(msg string)
}

// Machine applies the transfer lifecycle to the slots of any Owner.
//
// A Machine holds no per-transfer state of its own and must only be used
// from the goroutine that owns the contacts.
type Machine struct {
	ctrl         Controller
	report       Reporter
	downloadDir  string
	timeProvider TimeProvider
}

// NewMachine creates a transfer state machine saving incoming files below
// downloadDir.
func NewMachine(ctrl Controller, report Reporter, downloadDir string) *Machine {
	if downloadDir == "" {
		downloadDir = "."
	}
	return &Machine{
		ctrl:         ctrl,
		report:       report,
		downloadDir:  downloadDir,
		timeProvider: DefaultTimeProvider{},
	}
}

// SetTimeProvider sets a custom time provider for deterministic testing.
func (m *Machine) SetTimeProvider(tp TimeProvider) {
	m.timeProvider = tp
}

// DownloadDir returns the directory incoming files are written to.
func (m *Machine) DownloadDir() string { return m.downloadDir }

// Offer registers an incoming file offer from c. The offer is refused with
// a cancel control when no receive slot is free or when name is unsafe.
func (m *Machine) Offer(c Owner, fileNumber, kind uint32, size uint64, name string, fileID [32]byte) (*Slot, error) {
	friend := c.Number()
	logrus.WithFields(logrus.Fields{
		"function":    "Offer",
		"friend_id":   friend,
		"file_number": fileNumber,
		"file_size":   size,
		"file_name":   name,
	}).Info("Incoming file transfer offer")

	s, err := c.Transfers().Allocate(friend, fileNumber, DirectionReceive, kind)
	if err != nil {
		m.control(friend, fileNumber, peer.ControlCancel)
		m.report.Warn("File transfer request failed: Too many concurrent file transfers.")
		return nil, err
	}

	m.report.Info(fmt.Sprintf("File transfer request for '%s' (%s)", displayName(name), humanize.IBytes(size)))

	path, err := ResolvePath(m.downloadDir, name)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "Offer",
			"friend_id":   friend,
			"file_number": fileNumber,
			"error":       err.Error(),
		}).Warn("Rejecting file offer with unsafe name")
		msg := "File transfer failed: Invalid file name."
		if errors.Is(err, ErrFileNameTooLong) {
			msg = "File transfer failed: File path too long."
		}
		m.fail(s, peer.ControlCancel, msg)
		return nil, err
	}

	s.FileSize = size
	s.Name = name
	s.Path = path
	s.FileID = fileID

	m.report.Info(fmt.Sprintf("Type `/savefile %d` to accept the file transfer.", s.Index))
	return s, nil
}

// Accept opens the destination of the pending receive slot at index and
// asks the peer to start sending. A rejected resume leaves the slot pending.
func (m *Machine) Accept(c Owner, index int) error {
	s := c.Transfers().FindByIndex(index, DirectionReceive)
	if s == nil || s.State != StatePending {
		m.report.Warn("No pending file transfers with that ID.")
		return ErrNotPending
	}

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Accept",
			"path":     s.Path,
			"error":    err.Error(),
		}).Error("Failed to open download path")
		m.fail(s, peer.ControlCancel, "File transfer failed: Invalid download path.")
		return fmt.Errorf("open %s: %w", s.Path, err)
	}

	if err := m.ctrl.FileControl(s.Friend, s.FileNumber, peer.ControlResume); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Accept",
				"path":     s.Path,
				"error":    closeErr.Error(),
			}).Warn("Failed to close file handle after rejected resume")
		}
		ce := peer.Classify(err)
		m.report.Warn(rejectionMessage(ce))
		return ce
	}

	s.File = f
	s.State = StateStarted
	s.StartTime = m.timeProvider.Now()

	logrus.WithFields(logrus.Fields{
		"function":    "Accept",
		"friend_id":   s.Friend,
		"file_number": s.FileNumber,
		"index":       s.Index,
		"path":        s.Path,
	}).Info("File transfer accepted")
	m.report.Info(fmt.Sprintf("Saving file [%d] as: '%s'", s.Index, displayName(s.Path)))
	return nil
}

// Chunk applies incoming file data. Chunks for slots that are not started
// are discarded, and an empty chunk completes the transfer.
func (m *Machine) Chunk(c Owner, fileNumber uint32, position uint64, data []byte) {
	s := c.Transfers().FindByPeerNumberDir(fileNumber, DirectionReceive)
	if s == nil || s.State != StateStarted {
		logrus.WithFields(logrus.Fields{
			"function":    "Chunk",
			"friend_id":   c.Number(),
			"file_number": fileNumber,
			"position":    position,
		}).Debug("Discarding chunk for inactive transfer")
		return
	}

	if len(data) == 0 {
		logrus.WithFields(logrus.Fields{
			"function":    "Chunk",
			"friend_id":   s.Friend,
			"file_number": s.FileNumber,
			"received":    s.Position,
			"elapsed":     elapsedSince(m.timeProvider, s.StartTime),
		}).Info("File transfer complete")
		m.Close(s, peer.ControlNone, fmt.Sprintf("File '%s' successfully received.", displayName(s.Name)))
		return
	}

	if s.File == nil {
		m.fail(s, peer.ControlCancel, fmt.Sprintf("File transfer for '%s' failed: Invalid file pointer.", displayName(s.Name)))
		return
	}

	if position != s.Position {
		logrus.WithFields(logrus.Fields{
			"function": "Chunk",
			"expected": s.Position,
			"position": position,
		}).Debug("Chunk position differs from received byte count")
	}

	n := uint64(len(data))
	if len(data) > MaxChunkSize || s.Position+n > s.FileSize || s.Position+n < s.Position {
		logrus.WithFields(logrus.Fields{
			"function":   "Chunk",
			"position":   s.Position,
			"chunk_size": len(data),
			"file_size":  s.FileSize,
		}).Warn("Chunk exceeds declared file size")
		m.fail(s, peer.ControlCancel, fmt.Sprintf("File transfer for '%s' failed: Write fail.", displayName(s.Name)))
		return
	}

	written, err := s.File.Write(data)
	if err != nil || written != len(data) {
		logrus.WithFields(logrus.Fields{
			"function": "Chunk",
			"path":     s.Path,
			"written":  written,
			"error":    err,
		}).Error("Failed to write chunk")
		m.fail(s, peer.ControlCancel, fmt.Sprintf("File transfer for '%s' failed: Write fail.", displayName(s.Name)))
		return
	}

	s.Bps += n
	s.Position += n
}

// Pause pauses the started slot at index.
func (m *Machine) Pause(c Owner, index int, dir Direction) error {
	s := c.Transfers().FindByIndex(index, dir)
	if s == nil || s.State != StateStarted {
		m.report.Warn("No active file transfers with that ID.")
		return ErrNoTransfer
	}
	if err := m.ctrl.FileControl(s.Friend, s.FileNumber, peer.ControlPause); err != nil {
		ce := peer.Classify(err)
		m.report.Warn(rejectionMessage(ce))
		return ce
	}
	s.State = StatePaused
	m.report.Info(fmt.Sprintf("File transfer [%s %d] for '%s' paused.", dir, index, displayName(s.Name)))
	return nil
}

// Resume resumes the paused slot at index.
func (m *Machine) Resume(c Owner, index int, dir Direction) error {
	s := c.Transfers().FindByIndex(index, dir)
	if s == nil || s.State != StatePaused {
		m.report.Warn("No paused file transfers with that ID.")
		return ErrNoTransfer
	}
	if err := m.ctrl.FileControl(s.Friend, s.FileNumber, peer.ControlResume); err != nil {
		ce := peer.Classify(err)
		m.report.Warn(rejectionMessage(ce))
		return ce
	}
	s.State = StateStarted
	m.report.Info(fmt.Sprintf("File transfer [%s %d] for '%s' resumed.", dir, index, displayName(s.Name)))
	return nil
}

// Cancel aborts the slot at index and tells the peer.
func (m *Machine) Cancel(c Owner, index int, dir Direction) error {
	s := c.Transfers().FindByIndex(index, dir)
	if s == nil {
		m.report.Warn("No active file transfers with that ID.")
		return ErrNoTransfer
	}
	m.Close(s, peer.ControlCancel, fmt.Sprintf("File transfer for '%s' cancelled.", displayName(s.Name)))
	return nil
}

// Close releases s: the file handle is closed, ctrl is sent unless it is
// peer.ControlNone, msg is reported when non-empty, and the slot is zeroed.
// Closing an inactive slot does nothing.
func (m *Machine) Close(s *Slot, ctrl peer.FileControl, msg string) {
	m.close(s, ctrl, msg, m.report.Info)
}

func (m *Machine) fail(s *Slot, ctrl peer.FileControl, msg string) {
	m.close(s, ctrl, msg, m.report.Warn)
}

func (m *Machine) close(s *Slot, ctrl peer.FileControl, msg string, report func(string)) {
	if s == nil || !s.Active() {
		return
	}

	if s.File != nil {
		if err := s.File.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Close",
				"path":     s.Path,
				"error":    err.Error(),
			}).Warn("Failed to close file handle")
		}
	}

	if ctrl != peer.ControlNone {
		m.control(s.Friend, s.FileNumber, ctrl)
	}

	if msg != "" {
		report(msg)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Close",
		"friend_id":   s.Friend,
		"file_number": s.FileNumber,
		"direction":   s.Direction.String(),
		"index":       s.Index,
		"control":     ctrl.String(),
	}).Debug("File transfer slot released")
	s.clear()
}

// CloseAll releases every active slot of c without signalling the peer and
// returns how many were closed.
func (m *Machine) CloseAll(c Owner) int {
	closed := 0
	for _, dir := range []Direction{DirectionSend, DirectionReceive} {
		for _, s := range c.Transfers().Active(dir) {
			m.Close(s, peer.ControlNone, "")
			closed++
		}
	}
	return closed
}

// control sends a control signal whose failure needs no user report.
func (m *Machine) control(friend, fileNumber uint32, ctrl peer.FileControl) {
	if err := m.ctrl.FileControl(friend, fileNumber, ctrl); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "control",
			"friend_id":   friend,
			"file_number": fileNumber,
			"control":     ctrl.String(),
			"error":       err.Error(),
		}).Warn("File control rejected")
	}
}

func rejectionMessage(ce *peer.ControlError) string {
	switch ce.Kind {
	case peer.ErrKindFriendNotFound:
		return "File transfer failed: Friend not found."
	case peer.ErrKindFriendNotOnline:
		return "File transfer failed: Friend is not online."
	case peer.ErrKindInvalidFileNumber:
		return "File transfer failed: Invalid filenumber."
	case peer.ErrKindConnection:
		return "File transfer failed: Connection error."
	default:
		return fmt.Sprintf("File transfer failed (%s).", ce.Error())
	}
}

// displayName replaces control characters so peer-supplied names cannot
// drive the terminal.
func displayName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, name)
}
