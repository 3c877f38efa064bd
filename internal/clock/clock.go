// Package clock abstracts the current time and file modification times so
// retention thresholds are computed against a single, replaceable source.
package clock

import (
	"io/fs"
	"sync"
	"time"
)

// Day is the unit every retention threshold is expressed in.
const Day = 24 * time.Hour

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Mock is a settable clock for tests and replays.
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock returns a Mock frozen at t.
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// ModTime is the single source of truth for a document's age.
func ModTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}

// Threshold returns the instant that lies days before now.
func Threshold(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * Day)
}
