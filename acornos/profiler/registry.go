package profiler

import "acorn/acornos/clock"

// Registry is an intrusive list of histograms. New histograms are inserted at
// the head and never removed.
type Registry struct {
	root *Histogram
	n    uint32
}

// Default is the process-wide registry used by the package-level constructors.
var Default = &Registry{}

func (r *Registry) insert(h *Histogram) *Histogram {
	r.n++
	h.id = r.n
	h.next = r.root
	r.root = h
	return h
}

// NewLinear registers a linear histogram with nbins bins of width divider.
func (r *Registry) NewLinear(clk clock.Clock, nbins int, divider uint32) *Histogram {
	return r.insert(newHistogram(clk, nbins, Linear{Divider: divider}))
}

// NewLog2 registers a base-2 logarithmic histogram.
func (r *Registry) NewLog2(clk clock.Clock, nbins int) *Histogram {
	return r.insert(newHistogram(clk, nbins, Log2{}))
}

// NewLog registers a logarithmic histogram with an arbitrary base > 1.
// Base 2 registers a Log2 histogram, so the report edges stay unambiguous.
func (r *Registry) NewLog(clk clock.Clock, nbins int, base float64) *Histogram {
	if base == 2 {
		return r.NewLog2(clk, nbins)
	}
	return r.insert(newHistogram(clk, nbins, NewLogBase(base)))
}

// Each calls fn for every histogram, newest first.
func (r *Registry) Each(fn func(*Histogram)) {
	for h := r.root; h != nil; h = h.next {
		fn(h)
	}
}

// Len returns the number of registered histograms.
func (r *Registry) Len() int {
	n := 0
	for h := r.root; h != nil; h = h.next {
		n++
	}
	return n
}

// ClearAll clears every histogram.
func (r *Registry) ClearAll() {
	r.Each((*Histogram).Clear)
}

func NewLinear(clk clock.Clock, nbins int, divider uint32) *Histogram {
	return Default.NewLinear(clk, nbins, divider)
}

func NewLog2(clk clock.Clock, nbins int) *Histogram {
	return Default.NewLog2(clk, nbins)
}

func NewLog(clk clock.Clock, nbins int, base float64) *Histogram {
	return Default.NewLog(clk, nbins, base)
}
