package herd

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// History is a bounded FIFO of cohesion samples, oldest first.
type History struct {
	size int
	buf  []float64
}

// NewHistory returns a history holding at most size samples.
func NewHistory(size int) *History {
	if size <= 0 {
		size = 30
	}
	return &History{size: size, buf: make([]float64, 0, size)}
}

// Push appends v, evicting the oldest sample when full.
func (h *History) Push(v float64) {
	if len(h.buf) == h.size {
		copy(h.buf, h.buf[1:])
		h.buf = h.buf[:h.size-1]
	}
	h.buf = append(h.buf, v)
}

// Values returns a copy of the samples, newest last.
func (h *History) Values() []float64 {
	out := make([]float64, len(h.buf))
	copy(out, h.buf)
	return out
}

// Len is the number of samples held.
func (h *History) Len() int { return len(h.buf) }

// Summary describes the samples currently held.
type Summary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Last float64 `json:"last"`
}

// Summary returns min, max, mean and last sample. An empty history summarises to zeros.
func (h *History) Summary() Summary {
	if len(h.buf) == 0 {
		return Summary{}
	}
	return Summary{
		Min:  floats.Min(h.buf),
		Max:  floats.Max(h.buf),
		Mean: stat.Mean(h.buf, nil),
		Last: h.buf[len(h.buf)-1],
	}
}
