package transfer

import (
	"errors"
	"os"
	"time"
)

// MaxFiles is the number of transfer slots per direction per contact.
const MaxFiles = 32

// ErrExhausted indicates that every slot of the requested direction is in use.
var ErrExhausted = errors.New("too many concurrent file transfers")

// ErrInvalidDirection indicates an unknown transfer direction.
var ErrInvalidDirection = errors.New("invalid transfer direction")

// Direction indicates whether a transfer is incoming or outgoing.
type Direction uint8

const (
	// DirectionSend represents a file being sent to the contact.
	DirectionSend Direction = iota + 1
	// DirectionReceive represents a file being received from the contact.
	DirectionReceive
)

// String returns the short direction name used by commands.
func (d Direction) String() string {
	switch d {
	case DirectionSend:
		return "send"
	case DirectionReceive:
		return "recv"
	default:
		return "invalid"
	}
}

// ParseDirection converts "send" or "recv" into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "send", "out":
		return DirectionSend, nil
	case "recv", "receive", "in":
		return DirectionReceive, nil
	default:
		return 0, ErrInvalidDirection
	}
}

// State is the lifecycle state of a slot.
type State uint8

const (
	// StateInactive marks a free slot.
	StateInactive State = iota
	// StatePaused marks a transfer paused by either side.
	StatePaused
	// StatePending marks a transfer waiting for acceptance.
	StatePending
	// StateStarted marks a transfer moving data.
	StateStarted
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StatePaused:
		return "paused"
	case StatePending:
		return "pending"
	case StateStarted:
		return "started"
	default:
		return "unknown"
	}
}

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Since returns the duration since t.
func (DefaultTimeProvider) Since(t time.Time) time.Duration { return time.Since(t) }

// Slot is one entry of a contact's transfer table.
type Slot struct {
	Direction  Direction
	State      State
	Friend     uint32
	FileNumber uint32
	Index      int
	Kind       uint32
	FileSize   uint64
	Position   uint64
	Bps        uint64
	File       *os.File
	Name       string
	Path       string
	FileID     [32]byte
	StartTime  time.Time
}

// Active reports whether the slot is occupied.
func (s *Slot) Active() bool { return s.State != StateInactive }

func (s *Slot) clear() { *s = Slot{} }

// Table holds the send and receive slots of one contact. The zero value is
// ready to use.
type Table struct {
	send [MaxFiles]Slot
	recv [MaxFiles]Slot
}

func (t *Table) slots(dir Direction) (*[MaxFiles]Slot, error) {
	switch dir {
	case DirectionSend:
		return &t.send, nil
	case DirectionReceive:
		return &t.recv, nil
	default:
		return nil, ErrInvalidDirection
	}
}

// Allocate claims the first inactive slot of dir, stamps its identity and
// marks it pending. No slot is modified when the direction is exhausted.
func (t *Table) Allocate(friend, fileNumber uint32, dir Direction, kind uint32) (*Slot, error) {
	slots, err := t.slots(dir)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		s := &slots[i]
		if s.Active() {
			continue
		}
		s.clear()
		s.Direction = dir
		s.Index = i
		s.Friend = friend
		s.FileNumber = fileNumber
		s.Kind = kind
		s.State = StatePending
		return s, nil
	}
	return nil, ErrExhausted
}

// FindByPeerNumber returns the first active slot carrying fileNumber,
// scanning sender i before receiver i. When both directions use the same
// number the sender wins; callers that know the direction should use
// FindByPeerNumberDir.
func (t *Table) FindByPeerNumber(fileNumber uint32) *Slot {
	for i := 0; i < MaxFiles; i++ {
		if s := &t.send[i]; s.Active() && s.FileNumber == fileNumber {
			return s
		}
		if s := &t.recv[i]; s.Active() && s.FileNumber == fileNumber {
			return s
		}
	}
	return nil
}

// FindByPeerNumberDir returns the active slot of dir carrying fileNumber.
func (t *Table) FindByPeerNumberDir(fileNumber uint32, dir Direction) *Slot {
	slots, err := t.slots(dir)
	if err != nil {
		return nil
	}
	for i := range slots {
		if s := &slots[i]; s.Active() && s.FileNumber == fileNumber {
			return s
		}
	}
	return nil
}

// FindByIndex returns the active slot at index in dir, or nil.
func (t *Table) FindByIndex(index int, dir Direction) *Slot {
	if index < 0 || index >= MaxFiles {
		return nil
	}
	slots, err := t.slots(dir)
	if err != nil {
		return nil
	}
	if s := &slots[index]; s.Active() {
		return s
	}
	return nil
}

// Active returns the occupied slots of dir in index order.
func (t *Table) Active(dir Direction) []*Slot {
	slots, err := t.slots(dir)
	if err != nil {
		return nil
	}
	var out []*Slot
	for i := range slots {
		if s := &slots[i]; s.Active() {
			out = append(out, s)
		}
	}
	return out
}

// Free returns the number of inactive slots in dir.
func (t *Table) Free(dir Direction) int {
	slots, err := t.slots(dir)
	if err != nil {
		return 0
	}
	n := 0
	for i := range slots {
		if !slots[i].Active() {
			n++
		}
	}
	return n
}
