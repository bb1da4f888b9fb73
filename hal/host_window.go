//go:build !tinygo && cgo

package hal

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"acorn/internal/buildinfo"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	// Hz is the number of steps per second. Zero means 60.
	Hz int
	// Scale is the window zoom. Zero means 2.
	Scale int
}

// RunWindow opens a window showing the framebuffer and the LED, and calls
// the step function once per frame. It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error, cfg WindowConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	h := New().(*hostHAL)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("acorn (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*cfg.Scale, h.fb.height*cfg.Scale)
	ebiten.SetTPS(cfg.Hz)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error
}

func (g *hostGame) Update() error {
	if g.step != nil {
		return g.step()
	}
	return nil
}

var (
	ledOn  = color.RGBA{R: 0x30, G: 0xe0, B: 0x40, A: 0xff}
	ledOff = color.RGBA{R: 0x20, G: 0x30, B: 0x20, A: 0xff}
)

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)
	rgbaFrom565(g.img.Pix, g.scratch)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)

	c := ledOff
	if on, _ := g.h.led.state(); on {
		c = ledOn
	}
	vector.DrawFilledCircle(screen, float32(fb.width-8), 8, 4, c, true)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
