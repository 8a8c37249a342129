package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/opd-ai/autotox/peer"
)

// ErrNotRegularFile indicates an attempt to send something other than a regular file.
var ErrNotRegularFile = errors.New("not a regular file")

// MaxHashedSize bounds how much of an outgoing file FileID reads. Hashing
// runs on the session goroutine, so larger files are identified by their
// leading bytes only.
const MaxHashedSize = 16 << 20

// FileID returns the BLAKE2b-256 digest of the first MaxHashedSize bytes of
// r, used as the content identifier of an outgoing file.
func FileID(r io.Reader) ([32]byte, error) {
	var id [32]byte
	h, err := blake2b.New256(nil)
	if err != nil {
		return id, err
	}
	if _, err := io.Copy(h, io.LimitReader(r, MaxHashedSize)); err != nil {
		return id, err
	}
	copy(id[:], h.Sum(nil))
	return id, nil
}

// Send offers the local file at path to c. The slot stays pending until the
// peer requests the first chunk.
func (m *Machine) Send(c Owner, path string) (*Slot, error) {
	friend := c.Number()
	table := c.Transfers()
	if table.Free(DirectionSend) == 0 {
		m.report.Warn("File transfer failed: Too many concurrent file transfers.")
		return nil, ErrExhausted
	}

	name := filepath.Base(path)
	if err := ValidateFileName(name); err != nil {
		m.report.Warn("File transfer failed: Invalid file name.")
		return nil, err
	}

	f, size, id, err := openForSend(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Send",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to open file for sending")
		m.report.Warn(fmt.Sprintf("File transfer failed: Cannot read '%s'.", displayName(path)))
		return nil, err
	}

	fileNumber, err := m.ctrl.FileSend(friend, peer.FileKindData, size, id, name)
	if err != nil {
		closeQuietly(f, path)
		ce := peer.Classify(err)
		m.report.Warn(rejectionMessage(ce))
		return nil, ce
	}

	s, err := table.Allocate(friend, fileNumber, DirectionSend, peer.FileKindData)
	if err != nil {
		closeQuietly(f, path)
		m.control(friend, fileNumber, peer.ControlCancel)
		m.report.Warn("File transfer failed: Too many concurrent file transfers.")
		return nil, err
	}
	s.File = f
	s.Name = name
	s.Path = path
	s.FileSize = size
	s.FileID = id

	logrus.WithFields(logrus.Fields{
		"function":    "Send",
		"friend_id":   friend,
		"file_number": fileNumber,
		"index":       s.Index,
		"file_size":   size,
	}).Info("File transfer offered")
	m.report.Info(fmt.Sprintf("Sending file [%d]: '%s' (%s)", s.Index, displayName(name), humanize.IBytes(size)))
	return s, nil
}

func openForSend(path string) (*os.File, uint64, [32]byte, error) {
	var id [32]byte
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, id, err
	}
	info, err := f.Stat()
	if err != nil {
		closeQuietly(f, path)
		return nil, 0, id, err
	}
	if !info.Mode().IsRegular() {
		closeQuietly(f, path)
		return nil, 0, id, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}
	if id, err = FileID(f); err != nil {
		closeQuietly(f, path)
		return nil, 0, id, err
	}
	return f, uint64(info.Size()), id, nil
}

// ChunkRequest answers a peer request for outgoing data. The first request
// starts a pending slot, and a zero length completes it.
func (m *Machine) ChunkRequest(c Owner, fileNumber uint32, position uint64, length int) {
	s := c.Transfers().FindByPeerNumberDir(fileNumber, DirectionSend)
	if s == nil || s.State == StatePaused {
		logrus.WithFields(logrus.Fields{
			"function":    "ChunkRequest",
			"friend_id":   c.Number(),
			"file_number": fileNumber,
			"position":    position,
		}).Debug("Discarding chunk request for inactive transfer")
		return
	}

	if s.State == StatePending {
		s.State = StateStarted
		s.StartTime = m.timeProvider.Now()
		m.report.Info(fmt.Sprintf("File transfer [%d] for '%s' accepted.", s.Index, displayName(s.Name)))
	}

	if length == 0 {
		logrus.WithFields(logrus.Fields{
			"function":    "ChunkRequest",
			"friend_id":   s.Friend,
			"file_number": s.FileNumber,
			"sent":        s.Position,
			"elapsed":     elapsedSince(m.timeProvider, s.StartTime),
		}).Info("File transfer complete")
		m.Close(s, peer.ControlNone, fmt.Sprintf("File '%s' successfully sent.", displayName(s.Name)))
		return
	}

	if s.File == nil {
		m.fail(s, peer.ControlCancel, fmt.Sprintf("File transfer for '%s' failed: Invalid file pointer.", displayName(s.Name)))
		return
	}

	if length < 0 || length > MaxChunkSize || position >= s.FileSize {
		logrus.WithFields(logrus.Fields{
			"function":  "ChunkRequest",
			"position":  position,
			"length":    length,
			"file_size": s.FileSize,
		}).Warn("Chunk request outside file bounds")
		m.fail(s, peer.ControlCancel, fmt.Sprintf("File transfer for '%s' failed: Read fail.", displayName(s.Name)))
		return
	}
	// The file may have grown since it was offered; never send past the
	// declared size.
	if rem := s.FileSize - position; uint64(length) > rem {
		length = int(rem)
	}

	buf := make([]byte, length)
	n, err := s.File.ReadAt(buf, int64(position))
	if n == 0 || (err != nil && !errors.Is(err, io.EOF)) {
		logrus.WithFields(logrus.Fields{
			"function": "ChunkRequest",
			"path":     s.Path,
			"position": position,
			"error":    err,
		}).Error("Failed to read chunk")
		m.fail(s, peer.ControlCancel, fmt.Sprintf("File transfer for '%s' failed: Read fail.", displayName(s.Name)))
		return
	}

	if err := m.ctrl.FileSendChunk(s.Friend, s.FileNumber, position, buf[:n]); err != nil {
		ce := peer.Classify(err)
		logrus.WithFields(logrus.Fields{
			"function":    "ChunkRequest",
			"friend_id":   s.Friend,
			"file_number": s.FileNumber,
			"error":       ce.Error(),
		}).Error("Failed to send chunk")
		m.fail(s, peer.ControlCancel, fmt.Sprintf("File transfer for '%s' failed: %s.", displayName(s.Name), ce.Kind))
		return
	}

	s.Position = position + uint64(n)
	s.Bps += uint64(n)
}

func closeQuietly(f *os.File, path string) {
	if err := f.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "closeQuietly",
			"path":     path,
			"error":    err.Error(),
		}).Warn("Failed to close file")
	}
}
