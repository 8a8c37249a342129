package transfer

// Shared test fixtures.
const (
	testFriend     uint32 = 7
	testFileNumber uint32 = 65536
	testFileSize          = 1024
	testFileName          = "notes.txt"
)
