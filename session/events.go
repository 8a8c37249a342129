package session

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/contact"
	"github.com/opd-ai/autotox/peer"
)

// handleEvent applies one network event to the session state.
func (s *Session) handleEvent(ev peer.Event) {
	switch ev := ev.(type) {
	case peer.MessageReceived:
		s.onMessage(ev)
	case peer.FileOffered:
		if c := s.eventContact("FileOffered", ev.Friend); c != nil {
			_, _ = s.machine.Offer(c, ev.FileNumber, ev.Kind, ev.Size, ev.Name, ev.FileID)
		}
	case peer.ChunkReceived:
		if c := s.eventContact("ChunkReceived", ev.Friend); c != nil {
			s.machine.Chunk(c, ev.FileNumber, ev.Position, ev.Data)
		}
	case peer.ChunkRequested:
		if c := s.eventContact("ChunkRequested", ev.Friend); c != nil {
			s.machine.ChunkRequest(c, ev.FileNumber, ev.Position, ev.Length)
		}
	case peer.ConnectivityChanged:
		s.onConnectivity(ev)
	case peer.SelfConnectivityChanged:
		s.selfStatus = ev.Status
		s.printer.Info(fmt.Sprintf("* You are %s", ev.Status))
	case peer.ContactRequested:
		s.onContactRequest(ev)
	case peer.NameChanged:
		if c := s.eventContact("NameChanged", ev.Friend); c != nil {
			c.Name = ev.Name
			if s.talkingTo == c {
				s.printer.Info(fmt.Sprintf("* Opposite changed name to %s", ev.Name))
			}
		}
	case peer.StatusMessageChanged:
		if c := s.eventContact("StatusMessageChanged", ev.Friend); c != nil {
			c.StatusMessage = ev.Message
		}
	default:
		logrus.WithFields(logrus.Fields{
			"function": "handleEvent",
			"event":    fmt.Sprintf("%T", ev),
		}).Warn("Unhandled network event")
	}
}

// eventContact looks up the contact an event refers to. Events for unknown
// contacts are stale and dropped.
func (s *Session) eventContact(event string, friend uint32) *contact.Contact {
	c := s.book.Get(friend)
	if c == nil {
		logrus.WithFields(logrus.Fields{
			"function":  "eventContact",
			"event":     event,
			"friend_id": friend,
		}).Debug("Discarding event for unknown contact")
	}
	return c
}

func (s *Session) onMessage(ev peer.MessageReceived) {
	c := s.eventContact("MessageReceived", ev.Friend)
	if c == nil {
		return
	}
	if ev.Action {
		s.printer.Info(fmt.Sprintf("* receive MESSAGE ACTION type from %s, not supported", c.DisplayName()))
		return
	}

	msg := s.chatLine(colorGuest, c.DisplayName(), ev.Text)
	c.Record(msg)
	if s.talkingTo == c {
		s.printer.write(msg)
		return
	}
	s.printer.Info(fmt.Sprintf("* receive message from %s, use `/go %d` to talk", c.DisplayName(), c.Number()))
	if s.cfg.AutoReplyAddresses {
		s.replyAddresses(c)
	}
}

func (s *Session) onConnectivity(ev peer.ConnectivityChanged) {
	c := s.eventContact("ConnectivityChanged", ev.Friend)
	if c == nil {
		return
	}
	c.SetConnectionStatus(ev.Status)
	s.printer.Info(fmt.Sprintf("* %s is %s", c.DisplayName(), ev.Status))

	if ev.Status.Online() {
		return
	}
	if n := s.machine.CloseAll(c); n > 0 {
		s.printer.Warn(fmt.Sprintf("* %d file transfers with %s were closed.", n, c.DisplayName()))
	}
}

func (s *Session) onContactRequest(ev peer.ContactRequested) {
	s.printer.Info("* receive friend request (use `/accept` to see).")
	req := s.requests.Push(ev.PublicKey, ev.Message)

	if s.cfg.AutoAcceptMessage == "" || ev.Message != s.cfg.AutoAcceptMessage {
		return
	}
	logrus.WithFields(logrus.Fields{
		"function":   "onContactRequest",
		"request_id": req.ID,
	}).Info("Auto-accepting contact request")
	if s.acceptRequest(req.ID) != nil {
		s.save()
	}
}
