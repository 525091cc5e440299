// Package runner drives an interpreter in real time: the CPU at a
// configurable rate, the timers at 60Hz and the frontend at the display
// refresh rate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beanboi7/chyp-8/emu/cpu"
	"github.com/beanboi7/chyp-8/emu/display"
	"github.com/retroenv/retrogolib/log"
)

const (
	TimerHz = 60
	// longest wall clock gap made up in one frame, anything beyond is dropped
	maxCatchUp = 100 * time.Millisecond
)

// Machine is the part of the interpreter the host loop needs.
type Machine interface {
	Step() error
	TickTimers()
	SetKeypad(state [cpu.KeyCount]bool)
	DisplaySnapshot() display.Frame
	DisplayDirty() bool
	SoundTimerActive() bool
	State() cpu.State
}

// Frontend shows frames and provides the keypad state.
type Frontend interface {
	// Poll processes pending host events and returns the keypad snapshot.
	Poll() [cpu.KeyCount]bool
	Render(frame display.Frame)
	Closed() bool
}

// Sound is switched on while the sound timer runs.
type Sound interface {
	SetActive(active bool)
}

type Options struct {
	CPUHz   int
	Refresh int
}

type Runner struct {
	machine  Machine
	frontend Frontend
	sound    Sound
	logger   *log.Logger

	cpuPeriod   time.Duration
	timerPeriod time.Duration
	framePeriod time.Duration
	cpuAcc      time.Duration
	timerAcc    time.Duration
	steps       uint64
	sounding    bool
}

// New returns a runner, sound may be nil.
func New(logger *log.Logger, machine Machine, frontend Frontend, sound Sound, opts Options) (*Runner, error) {
	if opts.CPUHz <= 0 || opts.Refresh <= 0 {
		return nil, fmt.Errorf("invalid rates: cpu %d Hz, refresh %d Hz", opts.CPUHz, opts.Refresh)
	}
	return &Runner{
		machine:     machine,
		frontend:    frontend,
		sound:       sound,
		logger:      logger,
		cpuPeriod:   time.Second / time.Duration(opts.CPUHz),
		timerPeriod: time.Second / TimerHz,
		framePeriod: time.Second / time.Duration(opts.Refresh),
	}, nil
}

// Run loops until the context is cancelled, the frontend is closed or the
// interpreter faults. It must be called from the goroutine that owns the
// frontend.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.framePeriod)
	defer ticker.Stop()
	defer r.setSound(false)

	r.frontend.Render(r.machine.DisplaySnapshot())
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if r.frontend.Closed() {
				r.logger.Info("Window closed", log.Int("steps", int(r.steps)))
				return nil
			}
			if err := r.Frame(now.Sub(last)); err != nil {
				return err
			}
			last = now
		}
	}
}

// Frame polls input, advances the interpreter by elapsed and presents the
// result.
func (r *Runner) Frame(elapsed time.Duration) error {
	r.machine.SetKeypad(r.frontend.Poll())

	if err := r.Advance(elapsed); err != nil {
		return err
	}

	if r.machine.DisplayDirty() {
		r.frontend.Render(r.machine.DisplaySnapshot())
	}
	r.setSound(r.machine.SoundTimerActive())
	return nil
}

// Advance runs the timer ticks and CPU steps owed for elapsed time.
func (r *Runner) Advance(elapsed time.Duration) error {
	if elapsed > maxCatchUp {
		elapsed = maxCatchUp
	}

	r.timerAcc += elapsed
	for r.timerAcc >= r.timerPeriod {
		r.machine.TickTimers()
		r.timerAcc -= r.timerPeriod
	}

	r.cpuAcc += elapsed
	for r.cpuAcc >= r.cpuPeriod {
		r.cpuAcc -= r.cpuPeriod
		if err := r.machine.Step(); err != nil {
			return r.fault(err)
		}
		r.steps++
	}
	return nil
}

func (r *Runner) fault(err error) error {
	var f *cpu.Fault
	if errors.As(err, &f) {
		r.logger.Error("Interpreter halted", err,
			log.Int("steps", int(r.steps)),
			log.String("pc", fmt.Sprintf("0x%03X", f.PC)),
			log.String("opcode", fmt.Sprintf("0x%04X", f.Opcode)))
	} else {
		r.logger.Error("Interpreter halted", err, log.Int("steps", int(r.steps)))
	}
	r.logger.Debug("Machine state", log.String("state", r.machine.State().String()))
	return fmt.Errorf("running program: %w", err)
}

func (r *Runner) setSound(active bool) {
	if r.sound == nil || active == r.sounding {
		return
	}
	r.sounding = active
	r.sound.SetActive(active)
}

// Steps returns the number of instructions executed so far.
func (r *Runner) Steps() uint64 {
	return r.steps
}
