package contact

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/autotox/peer"
	"github.com/opd-ai/autotox/transfer"
)

// Contact must be usable wherever the transfer machine expects an owner.
var _ transfer.Owner = (*Contact)(nil)

func TestNewContact(t *testing.T) {
	tp := &mockTimeProvider{fixedTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewWithTimeProvider(4, testKeyA, tp)

	assert.Equal(t, uint32(4), c.Number())
	assert.Equal(t, testKeyA, c.PublicKey)
	assert.Equal(t, peer.ConnectionNone, c.ConnectionStatus)
	assert.False(t, c.IsOnline())
	assert.Equal(t, tp.fixedTime, c.LastSeen)
	assert.Equal(t, "(unknown)", c.DisplayName())
	assert.Equal(t, transfer.MaxFiles, c.Transfers().Free(transfer.DirectionReceive))
}

func TestSetConnectionStatus(t *testing.T) {
	tp := &mockTimeProvider{fixedTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewWithTimeProvider(1, testKeyA, tp)

	tp.fixedTime = tp.fixedTime.Add(testDelayDuration)
	assert.Equal(t, testDelayDuration, c.LastSeenDuration())

	c.SetConnectionStatus(peer.ConnectionUDP)
	assert.True(t, c.IsOnline())
	assert.Equal(t, tp.fixedTime, c.LastSeen)
	assert.Zero(t, c.LastSeenDuration())
}

func TestHistory(t *testing.T) {
	c := New(1, testKeyA)
	assert.Empty(t, c.Recent(5))

	for i := 0; i < 3; i++ {
		c.Record(fmt.Sprintf("line %d", i))
	}
	assert.Equal(t, []string{"line 1", "line 2"}, c.Recent(2))
	assert.Equal(t, []string{"line 0", "line 1", "line 2"}, c.Recent(10))
	assert.Nil(t, c.Recent(0))
}

func TestHistoryBounded(t *testing.T) {
	c := New(1, testKeyA)
	for i := 0; i < MaxHistory+5; i++ {
		c.Record(fmt.Sprintf("line %d", i))
	}
	require.Equal(t, MaxHistory, c.HistoryLen())
	recent := c.Recent(MaxHistory)
	assert.Equal(t, "line 5", recent[0])
	assert.Equal(t, fmt.Sprintf("line %d", MaxHistory+4), recent[len(recent)-1])
}

func TestBook(t *testing.T) {
	b := NewBook()
	a := b.Add(0, testKeyA)
	bb := b.Add(1, testKeyB)
	c := b.Add(2, testKeyC)
	assert.Same(t, a, b.Add(0, testKeyA), "adding an existing number returns it")
	assert.Equal(t, 3, b.Len())

	assert.Same(t, bb, b.Get(1))
	assert.Same(t, c, b.FindByPublicKey(testKeyC))
	assert.Nil(t, b.Get(9))
	assert.Nil(t, b.FindByPublicKey([32]byte{}))

	assert.True(t, b.Remove(1))
	assert.False(t, b.Remove(1))
	assert.Equal(t, []*Contact{a, c}, b.All(), "removal keeps order")
}
