package collector

import "PocketSim/internal/model"

// MaxSamples is the retained window length per pair.
const MaxSamples = 200

// History is a FIFO window of samples for one pair.
type History struct {
	samples []model.PriceSample
	limit   int
}

// NewHistory creates a History capped at limit samples. A limit outside (0, MaxSamples]
// is replaced by MaxSamples.
func NewHistory(limit int) *History {
	if limit <= 0 || limit > MaxSamples {
		limit = MaxSamples
	}
	return &History{samples: make([]model.PriceSample, 0, limit), limit: limit}
}

// Append adds a sample, evicting the oldest once the cap is reached.
func (h *History) Append(s model.PriceSample) {
	if len(h.samples) == h.limit {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.limit-1]
	}
	h.samples = append(h.samples, s)
}

// Samples returns the retained window. Callers must not modify it.
func (h *History) Samples() []model.PriceSample {
	return h.samples
}

// Len returns the number of retained samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Last returns the newest sample.
func (h *History) Last() (model.PriceSample, bool) {
	if len(h.samples) == 0 {
		return model.PriceSample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Copy returns an independent copy of the window.
func (h *History) Copy() []model.PriceSample {
	return append([]model.PriceSample(nil), h.samples...)
}
