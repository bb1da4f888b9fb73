//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGB565(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), RGB565(255, 255, 255))
	assert.Equal(t, uint16(0xF800), RGB565(255, 0, 0))
	assert.Equal(t, uint16(0x07E0), RGB565(0, 255, 0))
	assert.Equal(t, uint16(0x001F), RGB565(0, 0, 255))

	r, g, b := rgb888From565(0xFFFF)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
}

func TestRGBAFrom565(t *testing.T) {
	src := []byte{0x00, 0xF8, 0x1F, 0x00}
	dst := make([]byte, 8)
	rgbaFrom565(dst, src)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, dst)
}

func TestFramebufferClearAndPresent(t *testing.T) {
	fb := newMemFramebuffer(3, 2)
	assert.Equal(t, 6, fb.StrideBytes())
	assert.Len(t, fb.Buffer(), 12)

	fb.ClearRGB(255, 0, 0)
	for i := 0; i < len(fb.buf); i += 2 {
		assert.Equal(t, []byte{0x00, 0xF8}, fb.buf[i:i+2])
	}

	calls := 0
	fb.present = func() error { calls++; return nil }
	require.NoError(t, fb.Present())
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), fb.Frames())
}

func TestHostLoggerAndLED(t *testing.T) {
	var buf bytes.Buffer
	h := newHost(hostClock{newMonoClock()}, &buf)
	h.Logger().WriteLineString("a")
	h.Logger().WriteLineBytes([]byte("b"))
	assert.Equal(t, "a\nb\n", buf.String())

	h.LED().High()
	h.LED().High()
	h.LED().Low()
	on, toggles := h.led.state()
	assert.False(t, on)
	assert.Equal(t, uint64(2), toggles)
}

func TestHostClockIsMonotonic(t *testing.T) {
	c := hostClock{newMonoClock()}
	a := c.Micros()
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, c.Micros()-a, uint32(2000))
	assert.Equal(t, uint32(1_000_000_000), c.CyclesPerSecond())
}

func TestRunHeadlessSimulated(t *testing.T) {
	var seen []uint32
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		clk := h.Clock()
		return func() error {
			seen = append(seen, clk.Millis())
			return nil
		}
	}, HeadlessConfig{Hz: 100, Ticks: 4, Simulate: true})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 10, 20, 30}, seen)
}

func TestRunHeadlessStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	n := 0
	err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error {
			n++
			if n == 3 {
				return boom
			}
			return nil
		}
	}, HeadlessConfig{Hz: 1000, Simulate: true})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, n)
}

func TestRunHeadlessWallClock(t *testing.T) {
	n := 0
	err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error { n++; return nil }
	}, HeadlessConfig{Hz: 1000, Ticks: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = RunHeadless(ctx, func(HAL) func() error { return nil }, HeadlessConfig{Simulate: true})
	assert.ErrorIs(t, err, context.Canceled)
}
