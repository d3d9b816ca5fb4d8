// Package clock supplies the per-cycle timestamp. The control core only
// consumes the hour of day for the boost windows plus the full timestamp for
// records; decoding and validating the underlying time source lives here.
package clock

import (
	"log"
	"time"
)

// Source supplies the current timestamp once per cycle. Implementations must
// only ever return plausible values; the core never proceeds on an
// implausible timestamp.
type Source interface {
	Now() time.Time
}

// SystemSource reads the OS clock, retrying until the reading is plausible.
// A freshly booted node without battery-backed time reports the epoch until
// NTP syncs; rather than boost at hour 0 on bogus time, we wait.
type SystemSource struct {
	// Sleep between retries, injectable for tests.
	Sleep func(time.Duration)
}

// NewSystemSource creates a SystemSource.
func NewSystemSource() *SystemSource {
	return &SystemSource{Sleep: time.Sleep}
}

// Now returns the current time, looping until it is plausible.
func (s *SystemSource) Now() time.Time {
	logged := false
	for {
		t := time.Now()
		if Plausible(t) {
			return t
		}
		if !logged {
			log.Printf("clock: implausible time %v, waiting for sync", t)
			logged = true
		}
		s.Sleep(time.Second)
	}
}

// Plausible reports whether the timestamp looks like a real wall-clock
// reading rather than an unset RTC.
func Plausible(t time.Time) bool {
	y := t.Year()
	return y >= 2001 && y <= 2099
}

// FakeSource returns scripted timestamps for tests. Each call to Now
// consumes the next one; the last repeats once the script is exhausted.
type FakeSource struct {
	Times []time.Time
	index int
}

// NewFakeSource creates a FakeSource with the given timestamps.
func NewFakeSource(times ...time.Time) *FakeSource {
	return &FakeSource{Times: times}
}

// Now returns the next scripted timestamp.
func (f *FakeSource) Now() time.Time {
	if len(f.Times) == 0 {
		return time.Time{}
	}
	t := f.Times[f.index]
	if f.index < len(f.Times)-1 {
		f.index++
	}
	return t
}
