package term

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyterm"

	"acorn/hal"
)

// fbDisplay draws into an RGB565 framebuffer. Writes outside the buffer are
// ignored.
type fbDisplay struct {
	fb     hal.Framebuffer
	w, h   int
	stride int
}

var _ tinyterm.Displayer = (*fbDisplay)(nil)

// newFBDisplay returns nil if fb is missing or not RGB565.
func newFBDisplay(fb hal.Framebuffer) *fbDisplay {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	return &fbDisplay{fb: fb, w: fb.Width(), h: fb.Height(), stride: fb.StrideBytes()}
}

func (d *fbDisplay) Size() (x, y int16) {
	return int16(d.w), int16(d.h)
}

// offset returns the byte offset of pixel (x, y).
func (d *fbDisplay) offset(buf []byte, x, y int) (int, bool) {
	if x < 0 || x >= d.w || y < 0 || y >= d.h {
		return 0, false
	}
	off := y*d.stride + x*2
	return off, off+1 < len(buf)
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	buf := d.fb.Buffer()
	off, ok := d.offset(buf, int(x), int(y))
	if !ok {
		return
	}
	p := hal.RGB565(c.R, c.G, c.B)
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

func (d *fbDisplay) Display() error {
	return d.fb.Present()
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	buf := d.fb.Buffer()
	x0, x1 := clamp(int(x), 0, d.w), clamp(int(x)+int(width), 0, d.w)
	y0, y1 := clamp(int(y), 0, d.h), clamp(int(y)+int(height), 0, d.h)
	p := hal.RGB565(c.R, c.G, c.B)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			off, ok := d.offset(buf, px, py)
			if !ok {
				return nil
			}
			buf[off] = byte(p)
			buf[off+1] = byte(p >> 8)
		}
	}
	return nil
}

// ScrollUp moves the picture up by lines rows and fills the exposed rows
// with bg.
func (d *fbDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	n := int(lines)
	if n <= 0 {
		return nil
	}
	if n >= d.h {
		return d.FillRectangle(0, 0, int16(d.w), int16(d.h), bg)
	}
	buf := d.fb.Buffer()
	end := min(d.h*d.stride, len(buf))
	copy(buf, buf[n*d.stride:end])
	return d.FillRectangle(0, int16(d.h-n), int16(d.w), int16(n), bg)
}

func (d *fbDisplay) SetScroll(int16) {}

func (d *fbDisplay) SetRotation(drivers.Rotation) error { return nil }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
