// Package session runs the interactive client.
//
// A Session multiplexes three activities on one goroutine: reading raw
// keystrokes into the line editor, draining the events published by the
// network, and driving the network's event loop. Each tick performs them in
// that order and then redraws the prompt line:
//
//	s, err := session.New(session.Options{
//		Input:   term,
//		Output:  os.Stdout,
//		Network: net,
//		Store:   store,
//		Config:  cfg,
//	})
//	if err != nil {
//		return err
//	}
//	return s.Run(ctx)
//
// Lines starting with '/' are commands. While talking to a contact every
// other line is sent to that contact as a chat message. The session owns all
// contact and transfer state, so none of it is locked.
package session
