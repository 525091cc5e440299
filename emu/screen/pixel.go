package screen

import (
	"fmt"

	"github.com/faiface/pixel/pixelgl"
)

var buttons = map[string]pixelgl.Button{
	"0": pixelgl.Key0, "1": pixelgl.Key1, "2": pixelgl.Key2, "3": pixelgl.Key3,
	"4": pixelgl.Key4, "5": pixelgl.Key5, "6": pixelgl.Key6, "7": pixelgl.Key7,
	"8": pixelgl.Key8, "9": pixelgl.Key9,
	"a": pixelgl.KeyA, "b": pixelgl.KeyB, "c": pixelgl.KeyC, "d": pixelgl.KeyD,
	"e": pixelgl.KeyE, "f": pixelgl.KeyF, "g": pixelgl.KeyG, "h": pixelgl.KeyH,
	"i": pixelgl.KeyI, "j": pixelgl.KeyJ, "k": pixelgl.KeyK, "l": pixelgl.KeyL,
	"m": pixelgl.KeyM, "n": pixelgl.KeyN, "o": pixelgl.KeyO, "p": pixelgl.KeyP,
	"q": pixelgl.KeyQ, "r": pixelgl.KeyR, "s": pixelgl.KeyS, "t": pixelgl.KeyT,
	"u": pixelgl.KeyU, "v": pixelgl.KeyV, "w": pixelgl.KeyW, "x": pixelgl.KeyX,
	"y": pixelgl.KeyY, "z": pixelgl.KeyZ,
	"space": pixelgl.KeySpace, "enter": pixelgl.KeyEnter,
	"up": pixelgl.KeyUp, "down": pixelgl.KeyDown,
	"left": pixelgl.KeyLeft, "right": pixelgl.KeyRight,
}

// KeyMap resolves host key names to pixelgl buttons.
func KeyMap(bindings map[uint8]string) (map[uint8]pixelgl.Button, error) {
	keyMap := make(map[uint8]pixelgl.Button, len(bindings))
	for key, name := range bindings {
		button, ok := buttons[name]
		if !ok {
			return nil, fmt.Errorf("unsupported host key %q for keypad key %X", name, key)
		}
		if name == "m" {
			return nil, fmt.Errorf("host key m is reserved for the framebuffer dump")
		}
		keyMap[key] = button
	}
	return keyMap, nil
}
