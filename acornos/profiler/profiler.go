// Package profiler accumulates run and wait latency histograms for
// coroutines and serializes them as a JSON report.
//
// A histogram is allocated once with a fixed bin count and registered into a
// process-wide list at construction. Coroutines feed it through the Sampler
// methods; PrintAll renders every registered profiler on demand.
package profiler

import "io"

// Kind tells which quantity a profiler measures.
type Kind uint8

const (
	KindUnset Kind = iota
	KindWait
	KindRun
)

func (k Kind) String() string {
	switch k {
	case KindWait:
		return "wait"
	case KindRun:
		return "run"
	default:
		return "null"
	}
}

// ParseKind parses "wait" or "run".
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "wait":
		return KindWait, true
	case "run":
		return KindRun, true
	default:
		return KindUnset, false
	}
}

// Sampler receives one sample per suspension point.
type Sampler interface {
	// ProfileWait is called when a coroutine resumes. actual is how long it
	// waited and expected how long it asked to wait, both in microseconds.
	ProfileWait(actual, expected uint32)
	// ProfileRun is called when a coroutine suspends, with the cycles spent
	// running since it resumed.
	ProfileRun(cycles uint32)
}

// Profiler is a named Sampler that can be cleared and printed.
type Profiler interface {
	Sampler
	// Begin labels the profiler. hz is the frequency of the sampled unit.
	Begin(name string, kind Kind, hz uint32)
	Name() string
	Kind() Kind
	Clear()
	// Print writes the histogram payload as JSON object members.
	Print(w io.Writer) error
}

// Discard is a Sampler that drops everything.
var Discard Sampler = discard{}

type discard struct{}

func (discard) ProfileWait(uint32, uint32) {}
func (discard) ProfileRun(uint32)          {}
