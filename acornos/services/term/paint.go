package term

import (
	"strings"

	"acorn/hal"
)

// Paint clears the display and writes title in red followed by lines. Long
// lines wrap and the screen scrolls. It reports false when there is no
// usable framebuffer.
func Paint(disp hal.Display, title string, lines ...string) bool {
	if disp == nil {
		return false
	}
	fb := disp.Framebuffer()
	d := newFBDisplay(fb)
	if d == nil {
		return false
	}
	fb.ClearRGB(0, 0, 0)
	t := newTerminal(d)
	_, _ = t.Write([]byte("\x1b[31m" + title + "\x1b[0m\n"))
	for _, l := range lines {
		l = strings.TrimRight(l, "\r\n")
		if l == "" {
			continue
		}
		_, _ = t.Write([]byte(l + "\n"))
	}
	t.Display()
	return true
}
