// Package limits provides centralized size constants and validation functions
// for the autotox client.
//
// # Limits
//
//   - MaxPlaintextMessage (1372 bytes): the Tox protocol limit for chat messages.
//   - MaxNameLength (128 bytes) and MaxStatusMessageLength (1007 bytes): profile fields.
//   - MaxRequestMessage (1016 bytes): text attached to a contact request.
//   - MaxFileNameLength (255 bytes): proposed names of incoming files.
//   - LineCapacity (512 bytes): the interactive input line. Longer input is truncated.
//
// # Validation Functions
//
// Each validation function reports ErrMessageEmpty or a wrapped ErrMessageTooLarge:
//
//	if err := limits.ValidatePlaintextMessage(line); err != nil {
//	    // reject before handing the message to the network
//	}
//
// Names and status messages may be empty; only their length is checked.
package limits
