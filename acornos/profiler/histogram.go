package profiler

import (
	"io"
	"math"
	"strconv"

	"github.com/joeycumines/go-utilpkg/jsonenc"

	"acorn/acornos/clock"
)

// Histogram is a Profiler that counts samples into a fixed number of bins
// chosen by a Binner.
type Histogram struct {
	name string
	kind Kind
	hz   uint32
	id   uint32

	binner    Binner
	bins      []uint32
	clk       clock.Clock
	clearedAt uint32

	next *Histogram
}

var _ Profiler = (*Histogram)(nil)

func newHistogram(clk clock.Clock, nbins int, b Binner) *Histogram {
	if nbins <= 0 {
		panic("profiler: histogram needs at least one bin")
	}
	if clk == nil {
		panic("profiler: nil clock")
	}
	h := &Histogram{
		hz:     1_000_000,
		binner: b,
		bins:   make([]uint32, nbins),
		clk:    clk,
	}
	h.Clear()
	return h
}

// AddSample counts v and returns the bin it landed in. Counters saturate.
func (h *Histogram) AddSample(v uint32) int {
	i := h.binner.Bin(v, len(h.bins))
	if h.bins[i] < math.MaxUint32 {
		h.bins[i]++
	}
	return i
}

// ProfileWait records how late the wait finished (actual-expected, modular).
func (h *Histogram) ProfileWait(actual, expected uint32) {
	h.AddSample(actual - expected)
}

func (h *Histogram) ProfileRun(cycles uint32) {
	h.AddSample(cycles)
}

func (h *Histogram) Begin(name string, kind Kind, hz uint32) {
	h.name = name
	h.kind = kind
	if hz != 0 {
		h.hz = hz
	}
}

func (h *Histogram) Name() string { return h.name }
func (h *Histogram) Kind() Kind   { return h.kind }
func (h *Histogram) Hz() uint32   { return h.hz }

// Label returns the name, or a stable hex identifier for unnamed profilers.
func (h *Histogram) Label() string {
	if h.name != "" {
		return h.name
	}
	return "p" + strconv.FormatUint(uint64(h.id), 16)
}

// Clear zeroes every bin and restarts the runtime counter.
func (h *Histogram) Clear() {
	for i := range h.bins {
		h.bins[i] = 0
	}
	h.clearedAt = h.clk.Millis()
}

// SetDivider changes the bin width of a linear histogram and clears it.
// Other strategies ignore it.
func (h *Histogram) SetDivider(div uint32) {
	if _, ok := h.binner.(Linear); !ok {
		return
	}
	h.binner = Linear{Divider: div}
	h.Clear()
}

// RuntimeMillis is the time since the last Clear.
func (h *Histogram) RuntimeMillis() uint32 {
	return h.clk.Millis() - h.clearedAt
}

// Bins returns a copy of the counters.
func (h *Histogram) Bins() []uint32 {
	return append([]uint32(nil), h.bins...)
}

// Count is the total number of samples since the last Clear.
func (h *Histogram) Count() uint64 {
	var n uint64
	for _, b := range h.bins {
		n += uint64(b)
	}
	return n
}

// Print writes `"hist":..., "hz":..., "runtime_ms":..., "data":[...]`.
func (h *Histogram) Print(w io.Writer) error {
	_, err := w.Write(h.appendPayload(nil))
	return err
}

func (h *Histogram) appendPayload(b []byte) []byte {
	switch bn := h.binner.(type) {
	case Linear:
		b = append(b, `"hist":"lin", "div":`...)
		div := bn.Divider
		if div == 0 {
			div = 1
		}
		b = strconv.AppendUint(b, uint64(div), 10)
	case LogBase:
		b = append(b, `"hist":"log", "exp":`...)
		b = jsonenc.AppendFloat64(b, bn.Base())
	default:
		b = append(b, `"hist":"log", "exp":2`...)
	}
	b = append(b, `, "hz":`...)
	b = strconv.AppendUint(b, uint64(h.hz), 10)
	b = append(b, `, "runtime_ms":`...)
	b = strconv.AppendUint(b, uint64(h.RuntimeMillis()), 10)
	b = append(b, `, "data":[`...)
	for i, v := range h.bins {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = strconv.AppendUint(b, uint64(v), 10)
	}
	return append(b, ']')
}
