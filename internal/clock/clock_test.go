package clock

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Fixed{At: at}
	if got := c.Now(); !got.Equal(at) {
		t.Errorf("Fixed.Now() = %v, want %v", got, at)
	}
}

func TestRealClockIsUTC(t *testing.T) {
	c := Real{}
	if got := c.Now(); got.Location() != time.UTC {
		t.Errorf("Real.Now() location = %v, want UTC", got.Location())
	}
}
