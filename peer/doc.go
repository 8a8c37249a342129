// Package peer defines the boundary between the autotox session and the
// peer-to-peer network it drives.
//
// The network stack is a collaborator, not part of this module: the session
// only issues the commands of the Network interface and consumes the typed
// events it publishes. Package toxnet provides the implementation backed by
// github.com/opd-ai/toxcore; tests use in-memory fakes.
//
// # Events
//
// Network callbacks are turned into values implementing Event and delivered
// on a channel. The session drains the channel once per tick, so every state
// mutation happens on the session goroutine:
//
//	for {
//	    select {
//	    case ev := <-net.Events():
//	        handle(ev)
//	    default:
//	        return
//	    }
//	}
//
// # Control Errors
//
// Rejected file controls are reported as *ControlError values whose Kind
// names the failure category. Classify converts an arbitrary collaborator
// error into one.
package peer
