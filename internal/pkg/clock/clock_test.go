package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stepClock struct {
	now  time.Time
	step time.Duration
}

func (s *stepClock) Now() time.Time {
	t := s.now
	s.now = s.now.Add(s.step)
	return t
}

func TestTimeClocker_Now(t *testing.T) {
	before := time.Now()
	got := New().Now()
	assert.False(t, got.Before(before))
}

func TestSince(t *testing.T) {
	c := &stepClock{now: time.Unix(0, 0), step: 25 * time.Millisecond}
	start := c.Now()
	assert.Equal(t, 25*time.Millisecond, Since(c, start))
}
