// Package limits provides centralized size limits for the autotox client.
// This ensures consistent validation across the line editor, the command
// layer and the transfer state machine.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxPlaintextMessage is the Tox protocol limit for a single chat message (1372 bytes).
	MaxPlaintextMessage = 1372

	// MaxNameLength is the Tox protocol limit for a display name.
	MaxNameLength = 128

	// MaxStatusMessageLength is the Tox protocol limit for a status message.
	MaxStatusMessageLength = 1007

	// MaxRequestMessage is the Tox protocol limit for the text attached to a contact request.
	MaxRequestMessage = 1016

	// MaxFileNameLength is the Tox protocol limit for a proposed file name.
	MaxFileNameLength = 255

	// LineCapacity is the capacity of the interactive input line. Longer lines
	// are truncated by the line editor.
	LineCapacity = 512

	// ToxIDHexLength is the length of a hex-encoded Tox address
	// (32-byte public key, 4-byte nospam, 2-byte checksum).
	ToxIDHexLength = 76

	// PublicKeyHexLength is the length of a hex-encoded public key.
	PublicKeyHexLength = 64
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(message), maxSize)
	}
	return nil
}

// ValidatePlaintextMessage validates a chat message against MaxPlaintextMessage.
func ValidatePlaintextMessage(message []byte) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > MaxPlaintextMessage {
		return fmt.Errorf("%w: plaintext size %d exceeds limit %d", ErrMessageTooLarge, len(message), MaxPlaintextMessage)
	}
	return nil
}

// ValidateName validates a display name. Unlike messages, an empty name is allowed.
func ValidateName(name []byte) error {
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name size %d exceeds limit %d", ErrMessageTooLarge, len(name), MaxNameLength)
	}
	return nil
}

// ValidateStatusMessage validates a status message. An empty status is allowed.
func ValidateStatusMessage(status []byte) error {
	if len(status) > MaxStatusMessageLength {
		return fmt.Errorf("%w: status size %d exceeds limit %d", ErrMessageTooLarge, len(status), MaxStatusMessageLength)
	}
	return nil
}

// ValidateRequestMessage validates the text attached to an outgoing contact request.
func ValidateRequestMessage(message []byte) error {
	return ValidateMessageSize(message, MaxRequestMessage)
}
