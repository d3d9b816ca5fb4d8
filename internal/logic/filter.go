package logic

// SmoothingSlots is the capacity of each channel's circular averaging buffer.
const SmoothingSlots = 10

// MaxDeviation is the largest accepted move away from the last accepted
// average in a single cycle, in centidegrees. A single corrupt reading can
// shift the buffer by at most 1.00C; a genuine trend still propagates at
// that rate.
const MaxDeviation Centidegrees = 100

// Clamp limits raw's deviation from the last accepted average to
// MaxDeviation in either direction.
func Clamp(raw, last Centidegrees) Centidegrees {
	if raw-last > MaxDeviation {
		return last + MaxDeviation
	}
	if last-raw > MaxDeviation {
		return last - MaxDeviation
	}
	return raw
}

// Smoother owns the per-channel circular smoothing buffers. Both channels
// share a single write cursor that advances exactly once per cycle; all index
// arithmetic goes through slot() so the wraparound lives in one place.
type Smoother struct {
	buf    [numChannels][SmoothingSlots]Centidegrees
	avg    [numChannels]Centidegrees
	primed [numChannels]bool
	cursor int
}

// NewSmoother creates an unprimed Smoother. Each channel's buffer is filled
// with the first reading it sees.
func NewSmoother() *Smoother {
	return &Smoother{}
}

func (s *Smoother) slot() int {
	return s.cursor % SmoothingSlots
}

// Primed reports whether the channel has received at least one reading.
func (s *Smoother) Primed(ch Channel) bool {
	return s.primed[ch]
}

// Average returns the channel's last accepted smoothed average.
func (s *Smoother) Average(ch Channel) Centidegrees {
	return s.avg[ch]
}

// Ingest clamps raw against the channel's last accepted average, writes it
// into the buffer at the shared cursor, and returns the recomputed smoothed
// average. The first reading for a channel primes every slot so the buffer is
// never partially populated.
func (s *Smoother) Ingest(ch Channel, raw Centidegrees) Centidegrees {
	if !s.primed[ch] {
		for i := range s.buf[ch] {
			s.buf[ch][i] = raw
		}
		s.avg[ch] = raw
		s.primed[ch] = true
		return raw
	}

	s.buf[ch][s.slot()] = Clamp(raw, s.avg[ch])

	var sum int
	for _, v := range s.buf[ch] {
		sum += int(v)
	}
	// Integer division, truncating toward zero.
	s.avg[ch] = Centidegrees(sum / SmoothingSlots)
	return s.avg[ch]
}

// Advance moves the shared write cursor to the next slot. Call exactly once
// per cycle, after both channels have been ingested.
func (s *Smoother) Advance() {
	s.cursor = (s.cursor + 1) % SmoothingSlots
}
