package peer

import (
	"errors"
	"fmt"
	"strings"
)

// ControlErrorKind is the category of a rejected network command.
type ControlErrorKind uint8

const (
	// ErrKindOther is any rejection without a more specific category.
	ErrKindOther ControlErrorKind = iota
	// ErrKindFriendNotFound means the contact number is unknown.
	ErrKindFriendNotFound
	// ErrKindFriendNotOnline means the contact is not connected.
	ErrKindFriendNotOnline
	// ErrKindInvalidFileNumber means the peer does not know the transfer.
	ErrKindInvalidFileNumber
	// ErrKindConnection means the packet could not be queued or sent.
	ErrKindConnection
)

// String returns the message shown to the user for the category.
func (k ControlErrorKind) String() string {
	switch k {
	case ErrKindFriendNotFound:
		return "friend not found"
	case ErrKindFriendNotOnline:
		return "friend not online"
	case ErrKindInvalidFileNumber:
		return "invalid file number"
	case ErrKindConnection:
		return "connection error"
	default:
		return "unknown error"
	}
}

// ControlError is a classified rejection from the network.
type ControlError struct {
	Kind ControlErrorKind
	Err  error
}

func (e *ControlError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ControlError) Unwrap() error { return e.Err }

// Classify converts err into a *ControlError. A nil err yields nil and an
// error that already is a *ControlError is returned unchanged. Other errors
// are categorized by their message, since the network stack reports
// rejections as plain errors.
func Classify(err error) *ControlError {
	if err == nil {
		return nil
	}
	var ce *ControlError
	if errors.As(err, &ce) {
		return ce
	}

	msg := strings.ToLower(err.Error())
	kind := ErrKindOther
	// Friend categories come first: toxcore mentions the file or transfer
	// in most messages, e.g. "friend not found for file chunk transfer:
	// friend is not connected".
	switch {
	case strings.Contains(msg, "not connected") || strings.Contains(msg, "not online") ||
		strings.Contains(msg, "offline"):
		kind = ErrKindFriendNotOnline
	case strings.Contains(msg, "friend not found") || strings.Contains(msg, "unknown friend") ||
		strings.Contains(msg, "friend does not exist"):
		kind = ErrKindFriendNotFound
	case strings.Contains(msg, "file") || strings.Contains(msg, "transfer"):
		kind = ErrKindInvalidFileNumber
	case strings.Contains(msg, "sendq") || strings.Contains(msg, "queue") ||
		strings.Contains(msg, "connection") || strings.Contains(msg, "transport"):
		kind = ErrKindConnection
	}
	return &ControlError{Kind: kind, Err: err}
}
