package session

import "strings"

const (
	testFriend     uint32 = 3
	testOtherPeer  uint32 = 4
	testFileNumber uint32 = 65536
	testFriendName        = "alice"
)

var (
	testAddress = strings.Repeat("AB", 38)
	testKey     = [32]byte{1, 2, 3}
	testKeyB    = [32]byte{4, 5, 6}
)
