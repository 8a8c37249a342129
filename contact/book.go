package contact

// Book is the ordered contact list of a session. It is not safe for
// concurrent use.
type Book struct {
	contacts []*Contact
	tp       TimeProvider
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{tp: defaultTimeProvider}
}

// SetTimeProvider sets the time provider used for new contacts.
func (b *Book) SetTimeProvider(tp TimeProvider) {
	b.tp = tp
}

// Add inserts a contact for number, or returns the existing one.
func (b *Book) Add(number uint32, publicKey [32]byte) *Contact {
	if c := b.Get(number); c != nil {
		return c
	}
	c := NewWithTimeProvider(number, publicKey, b.tp)
	b.contacts = append(b.contacts, c)
	return c
}

// Get returns the contact with number, or nil.
func (b *Book) Get(number uint32) *Contact {
	if i := b.index(number); i >= 0 {
		return b.contacts[i]
	}
	return nil
}

// FindByPublicKey returns the contact with the given key, or nil.
func (b *Book) FindByPublicKey(publicKey [32]byte) *Contact {
	for _, c := range b.contacts {
		if c.PublicKey == publicKey {
			return c
		}
	}
	return nil
}

// Remove deletes the contact with number, keeping the order of the rest.
func (b *Book) Remove(number uint32) bool {
	i := b.index(number)
	if i < 0 {
		return false
	}
	copy(b.contacts[i:], b.contacts[i+1:])
	b.contacts[len(b.contacts)-1] = nil
	b.contacts = b.contacts[:len(b.contacts)-1]
	return true
}

// All returns the contacts in insertion order. The slice is a copy.
func (b *Book) All() []*Contact {
	out := make([]*Contact, len(b.contacts))
	copy(out, b.contacts)
	return out
}

// Len returns the number of contacts.
func (b *Book) Len() int { return len(b.contacts) }

func (b *Book) index(number uint32) int {
	for i, c := range b.contacts {
		if c.number == number {
			return i
		}
	}
	return -1
}
