// Package screen is the windowed frontend, drawing frames with pixel and
// reading the keypad from the host keyboard.
package screen

import (
	"github.com/beanboi7/chyp-8/emu/cpu"
	"github.com/beanboi7/chyp-8/emu/display"
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/colornames"
)

type Window struct {
	*pixelgl.Window
	KeyMap map[uint8]pixelgl.Button
	Scale  float64

	logger  *log.Logger
	imd     *imdraw.IMDraw
	last    display.Frame
	dumping bool
}

// New opens the window, it has to be called from the pixelgl.Run callback.
func New(logger *log.Logger, scale float64, bindings map[uint8]string) (*Window, error) {
	keyMap, err := KeyMap(bindings)
	if err != nil {
		return nil, err
	}

	cfg := pixelgl.WindowConfig{
		Title:  "Chyp8",
		Bounds: pixel.R(0, 0, display.Width*scale, display.Height*scale),
		VSync:  true,
	}
	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, err
	}

	return &Window{
		Window: win,
		KeyMap: keyMap,
		Scale:  scale,
		logger: logger,
		imd:    imdraw.New(nil),
	}, nil
}

// Poll reads the keypad. Escape closes the window, M dumps the current
// frame to the log.
func (w *Window) Poll() [cpu.KeyCount]bool {
	w.UpdateInput()

	if w.Pressed(pixelgl.KeyEscape) {
		w.SetClosed(true)
	}
	// Render updates the window too, so edges are tracked here
	dump := w.Pressed(pixelgl.KeyM)
	if dump && !w.dumping {
		w.logger.Info("Framebuffer", log.String("pixels", "\n"+w.last.String()))
	}
	w.dumping = dump

	var keys [cpu.KeyCount]bool
	for key, button := range w.KeyMap {
		keys[key] = w.Pressed(button)
	}
	return keys
}

// Render draws every lit pixel as a scaled square, y grows downwards on the
// CHIP-8 and upwards in pixel.
func (w *Window) Render(frame display.Frame) {
	w.last = frame
	w.imd.Clear()
	w.imd.Color = colornames.White

	for y := range frame {
		top := float64(display.Height-y) * w.Scale
		for x := range frame[y] {
			if !frame[y][x] {
				continue
			}
			left := float64(x) * w.Scale
			w.imd.Push(pixel.V(left, top-w.Scale), pixel.V(left+w.Scale, top))
			w.imd.Rectangle(0)
		}
	}

	w.Clear(colornames.Black)
	w.imd.Draw(w.Window)
	w.Update()
}
