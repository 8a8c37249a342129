// Package transfer implements the per-contact file transfer tables and the
// state machine that drives them.
//
// Every contact owns a Table with MaxFiles send slots and MaxFiles receive
// slots. A slot's index is its array position and is what the user types in
// commands such as /savefile and /cancel. Slots are reused only after they
// return to StateInactive.
//
// # Lifecycle
//
//	Inactive ──Offer/Send──▶ Pending ──Accept/first ChunkRequest──▶ Started
//	Started ◀──Resume── Paused ◀──Pause── Started
//	Started ──empty chunk / zero-length request──▶ Inactive (success)
//	any ──Cancel / failure / Close──▶ Inactive
//
// Data for a slot that is not Started is discarded silently: stale and
// duplicate network events are expected and are not errors.
//
// # Receiving
//
// Offer validates the proposed name with ValidateFileName and resolves it
// below the download directory before the slot is armed. Accept opens the
// destination in append mode and sends a resume control. If the network
// rejects the control, the file is closed again and the slot stays pending
// so the user can retry.
//
//	m := transfer.NewMachine(network, printer, "/home/me/Downloads")
//	m.Offer(contact, fileNumber, kind, size, name, fileID)
//	m.Accept(contact, 0)
//	m.Chunk(contact, fileNumber, 0, data)
//
// # Sending
//
// Send hashes the file with BLAKE2b-256 to derive its identifier and offers
// it to the network. The peer accepts by requesting chunks; ChunkRequest
// answers each request with ReadAt, so requests may arrive in any order.
//
// # Concurrency
//
// Tables and the Machine are not safe for concurrent use. The session
// goroutine owns them.
package transfer
