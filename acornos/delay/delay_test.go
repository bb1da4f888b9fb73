package delay

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acorn/acornos/clock"
)

func TestExpiredAcrossWrap(t *testing.T) {
	tests := []struct {
		name     string
		now      uint16
		start    uint16
		duration uint16
		want     bool
	}{
		{"before", 5, 0, 10, false},
		{"exact", 10, 0, 10, true},
		{"wrapped short", 3, 65530, 10, false},
		{"wrapped exact", 4, 65530, 10, true},
		{"zero", 100, 100, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(tt.now, tt.start, tt.duration))
		})
	}

	assert.Equal(t, uint32(11), Elapsed[uint32](5, math.MaxUint32-5))
}

func TestNarrowClamp(t *testing.T) {
	c := clock.NewManual(0)
	tests := []struct {
		req  uint32
		want uint32
	}{
		{0, 0},
		{1000, 1000},
		{MaxNarrow - 1, MaxNarrow - 1},
		{MaxNarrow, MaxNarrow},
		{MaxNarrow + 1, MaxNarrow},
		{math.MaxUint16, MaxNarrow},
		{1 << 20, MaxNarrow},
	}
	for _, tt := range tests {
		var d Narrow
		d.Set(c, Millis, tt.req)
		assert.Equal(t, tt.want, d.Duration(), "request %d", tt.req)
	}
}

func TestNarrowStaysCorrectUntilDuration(t *testing.T) {
	for _, d := range []uint32{0, 1, 50, 1000, 20000, MaxNarrow} {
		c := &clock.Manual{}
		c.SetMillis(65000) // start near the top so most cases wrap
		var tm Narrow
		tm.Set(c, Millis, d)

		if d > 0 {
			c.Advance(time.Duration(d-1) * time.Millisecond)
			assert.False(t, tm.Expired(c), "delay %d expired one unit early", d)
			c.Advance(time.Millisecond)
		}
		assert.True(t, tm.Expired(c), "delay %d not expired on time", d)

		c.Advance(100 * time.Millisecond)
		assert.True(t, tm.Expired(c), "delay %d did not stay expired", d)
	}
}

func TestNarrowUnits(t *testing.T) {
	c := clock.NewManual(0)

	var us Narrow
	us.Set(c, Micros, 500)
	var s Narrow
	s.Set(c, Seconds, 2)

	c.Advance(499 * time.Microsecond)
	assert.False(t, us.Expired(c))
	c.Advance(time.Microsecond)
	assert.True(t, us.Expired(c))

	c.Advance(1999 * time.Millisecond)
	assert.False(t, s.Expired(c))
	c.Advance(time.Millisecond)
	assert.True(t, s.Expired(c))

	assert.Equal(t, uint32(2_000_000), s.ExpectedMicros())
	assert.Equal(t, Seconds, s.Unit())
}

func TestWideConvertsToMicros(t *testing.T) {
	c := clock.NewManual(0)

	var d Wide
	d.Set(c, Millis, 50)
	assert.Equal(t, uint32(50_000), d.Duration())

	d.Set(c, Seconds, 3)
	assert.Equal(t, uint32(3_000_000), d.Duration())

	d.Set(c, Seconds, 10_000)
	assert.Equal(t, uint32(MaxWide), d.Duration())

	d.Set(c, Millis, math.MaxUint32)
	assert.Equal(t, uint32(MaxWide), d.Duration())

	d.Set(c, Micros, MaxWide-1)
	assert.Equal(t, uint32(MaxWide-1), d.Duration())
}

func TestWideAcrossWrap(t *testing.T) {
	c := &clock.Manual{}
	c.SetMicros(math.MaxUint32 - 5)

	var d Wide
	d.Set(c, Micros, 10)
	require.Equal(t, uint32(math.MaxUint32-5), d.Start())

	c.Advance(9 * time.Microsecond)
	assert.False(t, d.Expired(c))
	c.Advance(time.Microsecond)
	assert.True(t, d.Expired(c))
}

func TestZeroDelayExpiresImmediately(t *testing.T) {
	c := clock.NewManual(time.Hour)
	for _, w := range []Width{Narrow16, Wide32} {
		tm := w.NewTimer()
		tm.Set(c, Millis, 0)
		assert.True(t, tm.Expired(c), w.String())

		tm.SetZero(c)
		assert.True(t, tm.Expired(c), w.String())
	}
}

func TestParseWidth(t *testing.T) {
	w, err := ParseWidth("Wide")
	require.NoError(t, err)
	assert.Equal(t, Wide32, w)

	w, err = ParseWidth("")
	require.NoError(t, err)
	assert.Equal(t, Narrow16, w)

	_, err = ParseWidth("64")
	assert.Error(t, err)
}
