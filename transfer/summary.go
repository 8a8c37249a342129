package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Summary is a point-in-time view of one slot for listings.
type Summary struct {
	Index     int
	Direction Direction
	State     State
	Name      string
	FileSize  uint64
	Position  uint64
	Rate      float64 // bytes per second since start
}

// Progress returns the completed percentage.
func (s Summary) Progress() float64 {
	if s.FileSize == 0 {
		return 0
	}
	return float64(s.Position) / float64(s.FileSize) * 100
}

// List returns summaries of every active slot of c, senders first.
func (m *Machine) List(c Owner) []Summary {
	var out []Summary
	for _, dir := range []Direction{DirectionSend, DirectionReceive} {
		for _, s := range c.Transfers().Active(dir) {
			out = append(out, m.summarize(s))
		}
	}
	return out
}

func (m *Machine) summarize(s *Slot) Summary {
	sum := Summary{
		Index:     s.Index,
		Direction: s.Direction,
		State:     s.State,
		Name:      s.Name,
		FileSize:  s.FileSize,
		Position:  s.Position,
	}
	if elapsed := elapsedSince(m.timeProvider, s.StartTime); elapsed > 0 {
		sum.Rate = float64(s.Bps) / elapsed.Seconds()
	}
	return sum
}

// FormatSummary renders a listing row.
func FormatSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s %2d] %-8s %5.1f%%  %s / %s",
		s.Direction, s.Index, s.State, s.Progress(),
		humanize.IBytes(s.Position), humanize.IBytes(s.FileSize))
	if s.Rate > 0 {
		fmt.Fprintf(&b, "  %s/s", humanize.IBytes(uint64(s.Rate)))
	}
	fmt.Fprintf(&b, "  %s", s.Name)
	return b.String()
}

// elapsedSince guards against clocks that move backwards.
func elapsedSince(tp TimeProvider, start time.Time) time.Duration {
	if start.IsZero() {
		return 0
	}
	if d := tp.Since(start); d > 0 {
		return d
	}
	return 0
}
