package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - Simulation calendar position
// =============================================================================

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }
func (tp TimePoint) IsZero() bool              { return tp.Time.IsZero() }
func (tp TimePoint) String() string            { return tp.Time.Format("2006-01-02") }

// =============================================================================
// CLOCK - Step counter for a time-stepped simulation
// =============================================================================

// Clock tracks the current simulation step. Whole-farm models run on a
// monthly step by default; StepMonths changes that.
//
// A nil *Clock is valid and always reports step 0 at the zero time, so
// accounts can be used outside a simulation.
type Clock struct {
	Start      TimePoint
	StepMonths int
	step       int
}

// NewClock creates a clock starting at start with monthly steps.
func NewClock(start TimePoint) *Clock {
	return &Clock{Start: start, StepMonths: 1}
}

// Step returns the index of the current step (0 before the first advance).
func (c *Clock) Step() int {
	if c == nil {
		return 0
	}
	return c.step
}

// Now returns the calendar position of the current step.
func (c *Clock) Now() TimePoint {
	if c == nil {
		return TimePoint{}
	}
	months := c.StepMonths
	if months <= 0 {
		months = 1
	}
	return c.Start.AddMonths(c.step * months)
}

// Advance moves the clock to the next step.
func (c *Clock) Advance() {
	if c == nil {
		return
	}
	c.step++
}

// Reset moves the clock back to the start.
func (c *Clock) Reset() {
	if c == nil {
		return
	}
	c.step = 0
}
