package contact

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Request is an incoming contact request waiting for a decision.
type Request struct {
	ID              uint32
	SenderPublicKey [32]byte
	Message         string
	Timestamp       time.Time
}

// Requests is the inbox of pending contact requests, newest first.
type Requests struct {
	pending []*Request
	tp      TimeProvider
}

// NewRequests creates an empty inbox.
func NewRequests() *Requests {
	return &Requests{tp: defaultTimeProvider}
}

// SetTimeProvider sets the time provider used to stamp requests.
func (r *Requests) SetTimeProvider(tp TimeProvider) {
	r.tp = tp
}

// Push records a request. Its id is one more than the newest pending id,
// starting at 1 for an empty inbox. A repeated request from the same key
// replaces the message of the pending one.
func (r *Requests) Push(publicKey [32]byte, message string) *Request {
	for _, req := range r.pending {
		if req.SenderPublicKey == publicKey {
			req.Message = message
			req.Timestamp = r.tp.Now()
			return req
		}
	}

	id := uint32(1)
	if len(r.pending) > 0 {
		id = r.pending[0].ID + 1
	}
	req := &Request{
		ID:              id,
		SenderPublicKey: publicKey,
		Message:         message,
		Timestamp:       r.tp.Now(),
	}
	r.pending = append([]*Request{req}, r.pending...)

	logrus.WithFields(logrus.Fields{
		"function":   "Push",
		"request_id": id,
		"public_key": publicKey[:8],
	}).Info("Contact request queued")
	return req
}

// Get returns the pending request with id, or nil.
func (r *Requests) Get(id uint32) *Request {
	for _, req := range r.pending {
		if req.ID == id {
			return req
		}
	}
	return nil
}

// Take removes and returns the pending request with id.
func (r *Requests) Take(id uint32) (*Request, bool) {
	for i, req := range r.pending {
		if req.ID == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return req, true
		}
	}
	return nil, false
}

// List returns the pending requests, newest first.
func (r *Requests) List() []*Request {
	out := make([]*Request, len(r.pending))
	copy(out, r.pending)
	return out
}

// Len returns the number of pending requests.
func (r *Requests) Len() int { return len(r.pending) }
