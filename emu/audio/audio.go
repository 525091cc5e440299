// Package audio plays a looping mp3 sample while the sound timer runs.
package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Beeper is paused whenever the sound timer is zero.
type Beeper struct {
	ctrl   *beep.Ctrl
	active bool
}

// Open decodes the sample at path and starts it paused on the speaker.
func Open(path string) (*Beeper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening beep sample: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding beep sample: %w", err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if buffer.Len() == 0 {
		return nil, fmt.Errorf("beep sample %s is empty", path)
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}

	b := newBeeper(buffer)
	speaker.Play(b.ctrl)
	return b, nil
}

func newBeeper(buffer *beep.Buffer) *Beeper {
	loop := beep.Loop(-1, buffer.Streamer(0, buffer.Len()))
	return &Beeper{
		ctrl: &beep.Ctrl{Streamer: loop, Paused: true},
	}
}

func (b *Beeper) SetActive(active bool) {
	if active == b.active {
		return
	}
	b.active = active

	speaker.Lock()
	b.ctrl.Paused = !active
	speaker.Unlock()
}
