// Package display holds the 64x32 monochrome framebuffer and the sprite
// drawing rules of the CHIP-8.
package display

import "strings"

const (
	Width  = 64
	Height = 32
)

// Frame is a read-only copy of the framebuffer, indexed [y][x].
type Frame [Height][Width]bool

// Buffer is the live framebuffer mutated by CLS and DRW.
type Buffer struct {
	pixels Frame
	dirty  bool
}

// Clear turns every pixel off.
func (b *Buffer) Clear() {
	b.pixels = Frame{}
	b.dirty = true
}

// Draw XORs sprite rows onto the buffer with the top left corner at (x, y).
// Coordinates are wrapped once into the screen, the sprite itself is clipped
// at the right and bottom edges. It reports whether any lit pixel was turned
// off.
func (b *Buffer) Draw(x, y uint8, sprite []byte) bool {
	x0 := int(x) % Width
	y0 := int(y) % Height
	collision := false

	for r, row := range sprite {
		py := y0 + r
		if py >= Height {
			break
		}
		for bit := 0; bit < 8; bit++ {
			px := x0 + bit
			if px >= Width {
				continue
			}
			if row&(0x80>>bit) == 0 {
				continue
			}
			if b.pixels[py][px] {
				collision = true
			}
			b.pixels[py][px] = !b.pixels[py][px]
		}
	}

	b.dirty = true
	return collision
}

// Pixel returns the state of a single pixel, out of range reads are off.
func (b *Buffer) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return b.pixels[y][x]
}

// Snapshot returns a copy of the current frame.
func (b *Buffer) Snapshot() Frame {
	return b.pixels
}

// Dirty reports whether the buffer changed since the last call and resets
// the flag.
func (b *Buffer) Dirty() bool {
	d := b.dirty
	b.dirty = false
	return d
}

// Lit counts the pixels that are on.
func (f Frame) Lit() int {
	n := 0
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				n++
			}
		}
	}
	return n
}

// String renders the frame as text, one line per row.
func (f Frame) String() string {
	var sb strings.Builder
	sb.Grow(Height * (Width*3 + 1))
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				sb.WriteString("█")
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
