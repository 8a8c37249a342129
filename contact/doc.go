// Package contact keeps the session's view of its contacts.
//
// A Contact is identified by the number the network assigned to it and owns
// its chat history and its transfer.Table, so transfers never outlive the
// contact they belong to. Contact satisfies transfer.Owner.
//
// Book stores contacts in insertion order; Requests is the inbox of
// incoming contact requests awaiting /accept or /deny. Request ids grow
// monotonically from the newest pending request:
//
//	inbox := contact.NewRequests()
//	req := inbox.Push(publicKey, "hi, it's me")
//	if r, ok := inbox.Take(req.ID); ok {
//	    network.AcceptContact(r.SenderPublicKey)
//	}
//
// None of the types in this package are safe for concurrent use; the
// session goroutine owns them.
package contact
