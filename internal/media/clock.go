package media

import (
	"math"
	"time"
)

// Playback rate bounds and step.
const (
	RateStep = 0.25
	MinRate  = 0.25
	MaxRate  = 4.0
)

// Clock is a simulated playhead over a media file of known duration. The
// host advances it from its own timer; it never runs a goroutine.
type Clock struct {
	duration float64
	pos      float64
	rate     float64
	playing  bool
}

// NewClock returns a paused clock at 0 with rate 1.
func NewClock(duration float64) *Clock {
	return &Clock{duration: math.Max(0, duration), rate: 1}
}

// Position implements the engine's position source.
func (c *Clock) Position() float64 { return c.pos }

// Duration returns the media length in seconds.
func (c *Clock) Duration() float64 { return c.duration }

// Playing reports whether Advance moves the playhead.
func (c *Clock) Playing() bool { return c.playing }

// Rate returns the playback rate.
func (c *Clock) Rate() float64 { return c.rate }

// Seek moves the playhead to t, clamped to the media.
func (c *Clock) Seek(t float64) {
	if math.IsNaN(t) {
		return
	}
	c.pos = math.Max(0, math.Min(t, c.duration))
}

// Skip moves the playhead by d seconds.
func (c *Clock) Skip(d float64) { c.Seek(c.pos + d) }

// TogglePlay starts or pauses playback. Playing from the end restarts at 0.
func (c *Clock) TogglePlay() {
	if !c.playing && c.pos >= c.duration {
		c.pos = 0
	}
	c.playing = !c.playing
}

// Pause stops playback.
func (c *Clock) Pause() { c.playing = false }

// Faster raises the rate by one step.
func (c *Clock) Faster() { c.setRate(c.rate + RateStep) }

// Slower lowers the rate by one step.
func (c *Clock) Slower() { c.setRate(c.rate - RateStep) }

// ResetRate returns to normal speed.
func (c *Clock) ResetRate() { c.rate = 1 }

func (c *Clock) setRate(r float64) {
	c.rate = math.Max(MinRate, math.Min(r, MaxRate))
}

// Advance moves a playing clock forward by dt of wall time. Playback stops
// at the end of the media.
func (c *Clock) Advance(dt time.Duration) {
	if !c.playing {
		return
	}
	c.pos += dt.Seconds() * c.rate
	if c.pos >= c.duration {
		c.pos = c.duration
		c.playing = false
	}
}
