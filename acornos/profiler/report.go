package profiler

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joeycumines/go-utilpkg/jsonenc"
)

// PrintAll writes every registered histogram as a JSON array:
//
//	[
//	{"name":"blink", "type":"run", "hist":"log", "exp":2, "hz":1000000, "runtime_ms":5000, "data":[...]},
//	...
//	]
//
// When reset is true each histogram is cleared after it is printed.
func (r *Registry) PrintAll(w io.Writer, reset bool) error {
	b := make([]byte, 0, 256)
	b = append(b, "[\n"...)
	for h := r.root; h != nil; h = h.next {
		b = h.appendObject(b)
		if reset {
			h.Clear()
		}
		if h.next != nil {
			b = append(b, ',')
		}
		b = append(b, '\n')
	}
	b = append(b, "]\n"...)
	_, err := w.Write(b)
	return err
}

// PrintStats writes one histogram as a JSON object, optionally clearing it.
func (h *Histogram) PrintStats(w io.Writer, reset bool) error {
	_, err := w.Write(h.appendObject(nil))
	if reset {
		h.Clear()
	}
	return err
}

func (h *Histogram) appendObject(b []byte) []byte {
	b = append(b, `{"name":`...)
	b = jsonenc.AppendString(b, h.Label())
	b = append(b, `, "type":`...)
	b = jsonenc.AppendString(b, h.kind.String())
	b = append(b, ", "...)
	b = h.appendPayload(b)
	return append(b, '}')
}

// Snapshot is a decoded report entry.
type Snapshot struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Hist      string   `json:"hist"`
	Div       uint32   `json:"div,omitempty"`
	Exp       float64  `json:"exp,omitempty"`
	Hz        uint32   `json:"hz"`
	RuntimeMs uint32   `json:"runtime_ms"`
	Data      []uint32 `json:"data"`
}

// Snapshot copies the current state of h.
func (h *Histogram) Snapshot() Snapshot {
	s := Snapshot{
		Name:      h.Label(),
		Type:      h.kind.String(),
		Hz:        h.hz,
		RuntimeMs: h.RuntimeMillis(),
		Data:      h.Bins(),
	}
	switch bn := h.binner.(type) {
	case Linear:
		s.Hist = "lin"
		s.Div = bn.Divider
		if s.Div == 0 {
			s.Div = 1
		}
	case LogBase:
		s.Hist = "log"
		s.Exp = bn.Base()
	default:
		s.Hist = "log"
		s.Exp = 2
	}
	return s
}

// Snapshots copies every registered histogram, newest first.
func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, r.Len())
	r.Each(func(h *Histogram) { out = append(out, h.Snapshot()) })
	return out
}

// Count is the number of samples in the snapshot.
func (s Snapshot) Count() uint64 {
	var n uint64
	for _, v := range s.Data {
		n += uint64(v)
	}
	return n
}

// LowerEdge returns the smallest sample value that lands in bin i.
func (s Snapshot) LowerEdge(i int) float64 {
	if i <= 0 {
		return 0
	}
	if s.Hist == "lin" {
		return float64(i) * float64(s.Div)
	}
	exp := s.Exp
	if exp <= 1 {
		exp = 2
	}
	if exp == 2 {
		return float64(uint64(1) << uint(i))
	}
	e := 1.0
	for j := 0; j < i; j++ {
		e *= exp
	}
	return e - 1
}

// Percentile returns the lower edge of the bin holding the p-th percentile
// sample (0 < p <= 100), or 0 for an empty snapshot.
func (s Snapshot) Percentile(p float64) float64 {
	total := s.Count()
	if total == 0 {
		return 0
	}
	want := uint64(float64(total) * p / 100)
	if want == 0 {
		want = 1
	}
	var acc uint64
	for i, v := range s.Data {
		acc += uint64(v)
		if acc >= want {
			return s.LowerEdge(i)
		}
	}
	return s.LowerEdge(len(s.Data) - 1)
}

// ParseReport decodes the output of PrintAll.
func ParseReport(r io.Reader) ([]Snapshot, error) {
	var out []Snapshot
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("profiler: decode report: %w", err)
	}
	return out, nil
}
