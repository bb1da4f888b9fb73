package profiler

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acorn/acornos/clock"
)

func TestLinearBins(t *testing.T) {
	r := &Registry{}
	h := r.NewLinear(clock.NewManual(0), 4, 100)

	assert.Equal(t, 0, h.AddSample(0))
	assert.Equal(t, 0, h.AddSample(99))
	assert.Equal(t, 1, h.AddSample(100))
	assert.Equal(t, 2, h.AddSample(250))
	assert.Equal(t, 3, h.AddSample(399))
	assert.Equal(t, 3, h.AddSample(1_000_000))
	assert.Equal(t, []uint32{2, 1, 1, 2}, h.Bins())
}

func TestLog2Bins(t *testing.T) {
	r := &Registry{}
	h := r.NewLog2(clock.NewManual(0), 8)

	tests := []struct {
		v    uint32
		want int
	}{
		{0, 0}, {1, 0},
		{2, 1}, {3, 1},
		{4, 2}, {5, 2}, {7, 2},
		{8, 3}, {127, 6}, {128, 7},
		{math.MaxUint32, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.AddSample(tt.v), "sample %d", tt.v)
	}
}

func TestLogBaseBins(t *testing.T) {
	r := &Registry{}
	h := r.NewLog(clock.NewManual(0), 4, 10)

	assert.Equal(t, 0, h.AddSample(0))
	assert.Equal(t, 0, h.AddSample(5))
	assert.Equal(t, 1, h.AddSample(50))
	assert.Equal(t, 2, h.AddSample(500))
	assert.Equal(t, 3, h.AddSample(1_000_000))
	assert.Equal(t, 3, h.AddSample(math.MaxUint32))
}

func TestLogBaseExactPowers(t *testing.T) {
	r := &Registry{}
	h := r.NewLog(clock.NewManual(0), 8, 10)

	tests := []struct {
		v    uint32
		want int
	}{
		{8, 0}, {9, 1},
		{98, 1}, {99, 2},
		{998, 2}, {999, 3},
		{9999, 4}, {99999, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.AddSample(tt.v), "sample %d", tt.v)
	}

	h3 := r.NewLog(clock.NewManual(0), 8, 3)
	assert.Equal(t, 1, h3.AddSample(2))
	assert.Equal(t, 2, h3.AddSample(8))
	assert.Equal(t, 1, h3.AddSample(7))
}

func TestLogBaseEdgesMatchReport(t *testing.T) {
	r := &Registry{}
	h := r.NewLog(clock.NewManual(0), 6, 10)
	s := h.Snapshot()
	for i := 1; i < 6; i++ {
		edge := uint32(s.LowerEdge(i))
		assert.Equal(t, i, h.AddSample(edge), "edge of bin %d", i)
		assert.Equal(t, i-1, h.AddSample(edge-1), "below bin %d", i)
	}
}

func TestLogBaseTwoIsLog2(t *testing.T) {
	r := &Registry{}
	h := r.NewLog(clock.NewManual(0), 8, 2)
	assert.IsType(t, Log2{}, h.binner)

	s := h.Snapshot()
	assert.Equal(t, 4.0, s.LowerEdge(2))
	assert.Equal(t, 2, h.AddSample(4))
	assert.Equal(t, 1, h.AddSample(3))
}

func TestLogBaseRejectsSmallBase(t *testing.T) {
	assert.Panics(t, func() { NewLogBase(1) })
	assert.Panics(t, func() { NewLogBase(0.5) })
}

func TestZeroBinsPanics(t *testing.T) {
	r := &Registry{}
	assert.Panics(t, func() { r.NewLinear(clock.NewManual(0), 0, 1) })
}

func TestCountersSaturate(t *testing.T) {
	r := &Registry{}
	h := r.NewLinear(clock.NewManual(0), 1, 1)
	h.bins[0] = math.MaxUint32

	h.AddSample(0)
	assert.Equal(t, uint32(math.MaxUint32), h.bins[0])
}

func TestWaitRecordsLateness(t *testing.T) {
	r := &Registry{}
	h := r.NewLinear(clock.NewManual(0), 10, 1000)

	h.ProfileWait(52_300, 50_000)
	assert.Equal(t, uint32(1), h.Bins()[2])

	h.ProfileRun(9_999)
	assert.Equal(t, uint32(1), h.Bins()[9])
}

func TestClearResetsBinsAndRuntime(t *testing.T) {
	c := clock.NewManual(time.Second)
	r := &Registry{}
	h := r.NewLog2(c, 4)

	h.AddSample(3)
	c.Advance(250 * time.Millisecond)
	require.Equal(t, uint32(250), h.RuntimeMillis())

	h.Clear()
	assert.Equal(t, uint32(0), h.RuntimeMillis())
	assert.Equal(t, uint64(0), h.Count())
	assert.Equal(t, []uint32{0, 0, 0, 0}, h.Bins())
}

func TestSetDividerClears(t *testing.T) {
	r := &Registry{}
	h := r.NewLinear(clock.NewManual(0), 4, 10)
	h.AddSample(15)

	h.SetDivider(100)
	assert.Equal(t, uint64(0), h.Count())
	assert.Equal(t, 0, h.AddSample(15))

	l := r.NewLog2(clock.NewManual(0), 4)
	l.AddSample(3)
	l.SetDivider(100)
	assert.Equal(t, uint64(1), l.Count())
}

func TestRegistryOrderIsNewestFirst(t *testing.T) {
	c := clock.NewManual(0)
	r := &Registry{}
	a := r.NewLinear(c, 2, 1)
	a.Begin("a", KindRun, 0)
	b := r.NewLog2(c, 2)
	b.Begin("b", KindWait, 0)

	var names []string
	r.Each(func(h *Histogram) { names = append(names, h.Name()) })
	assert.Equal(t, []string{"b", "a"}, names)
	assert.Equal(t, 2, r.Len())
}

func TestPrintAllRoundTrip(t *testing.T) {
	c := clock.NewManual(0)
	r := &Registry{}

	run := r.NewLog2(c, 3)
	run.Begin("blink", KindRun, 1_000_000_000)
	run.AddSample(5)

	wait := r.NewLinear(c, 2, 500)
	wait.Begin("blink", KindWait, 1_000_000)
	wait.AddSample(700)

	anon := r.NewLog(c, 2, 4)
	anon.AddSample(0)

	c.Advance(1500 * time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, r.PrintAll(&buf, true))
	require.True(t, strings.HasPrefix(buf.String(), "[\n{"))
	require.True(t, strings.HasSuffix(buf.String(), "}\n]\n"))

	snaps, err := ParseReport(&buf)
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	assert.Equal(t, "p3", snaps[0].Name)
	assert.Equal(t, "null", snaps[0].Type)
	assert.Equal(t, "log", snaps[0].Hist)
	assert.InDelta(t, 4.0, snaps[0].Exp, 1e-9)

	assert.Equal(t, Snapshot{
		Name: "blink", Type: "wait", Hist: "lin", Div: 500,
		Hz: 1_000_000, RuntimeMs: 1500, Data: []uint32{0, 1},
	}, snaps[1])

	assert.Equal(t, "run", snaps[2].Type)
	assert.InDelta(t, 2.0, snaps[2].Exp, 1e-9)
	assert.Equal(t, []uint32{0, 0, 1}, snaps[2].Data)

	// reset cleared everything
	assert.Equal(t, uint64(0), run.Count())
	assert.Equal(t, uint32(0), wait.RuntimeMillis())
}

func TestPrintAllEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Registry{}).PrintAll(&buf, false))
	assert.Equal(t, "[\n]\n", buf.String())
}

func TestSnapshotPercentile(t *testing.T) {
	s := Snapshot{Hist: "lin", Div: 10, Data: []uint32{5, 3, 2}}
	assert.Equal(t, float64(0), s.Percentile(50))
	assert.Equal(t, float64(10), s.Percentile(80))
	assert.Equal(t, float64(20), s.Percentile(99))

	l := Snapshot{Hist: "log", Exp: 2, Data: []uint32{0, 0, 4}}
	assert.Equal(t, float64(4), l.Percentile(50))
	assert.Equal(t, float64(0), Snapshot{Hist: "lin", Div: 1}.Percentile(50))
}

func TestDiscardIsNoop(t *testing.T) {
	Discard.ProfileWait(1, 2)
	Discard.ProfileRun(3)
}
