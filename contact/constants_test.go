package contact

import "time"

// testDelayDuration is a simulated delay used in last-seen tests.
const testDelayDuration = 2 * time.Second

var (
	testKeyA = [32]byte{0xaa, 1}
	testKeyB = [32]byte{0xbb, 2}
	testKeyC = [32]byte{0xcc, 3}
)
