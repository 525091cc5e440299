package cpu

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/beanboi7/chyp-8/emu/display"
)

// highest pc that still leaves room to fetch a full opcode
const maxPC = lastAddress - 1

// Mode is the execution state of the interpreter.
type Mode int

const (
	Running Mode = iota
	// WaitingForKey is entered by FX0A, Step does nothing but poll the
	// keypad until a key goes down.
	WaitingForKey
)

func (m Mode) String() string {
	if m == WaitingForKey {
		return "waiting-for-key"
	}
	return "running"
}

// Random is the source CXNN draws from, *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
}

type EMU struct {
	memory  Memory
	V       [16]uint8
	I       uint16 //address register
	pc      uint16
	stack   Stack
	timers  Timers
	display display.Buffer
	keypad  Keypad
	input   InputProbe
	rand    Random
	quirks  Quirks
	tracer  Tracer

	mode    Mode
	waitReg uint8
	program []byte
}

type Option func(*EMU)

func WithQuirks(q Quirks) Option {
	return func(emu *EMU) { emu.quirks = q }
}

func WithRandom(r Random) Option {
	return func(emu *EMU) { emu.rand = r }
}

// WithSeed makes CXNN reproducible.
func WithSeed(seed int64) Option {
	return func(emu *EMU) { emu.rand = rand.New(rand.NewSource(seed)) }
}

func WithTracer(t Tracer) Option {
	return func(emu *EMU) { emu.tracer = t }
}

// WithInput replaces the built in keypad. SetKeyState has no effect on a
// probe installed this way.
func WithInput(p InputProbe) Option {
	return func(emu *EMU) { emu.input = p }
}

// NewEMU returns a powered on interpreter with the font loaded and nothing
// else in memory.
func NewEMU(opts ...Option) *EMU {
	emu := &EMU{
		memory: newMemory(),
		pc:     ProgramStart,
	}
	emu.input = &emu.keypad
	for _, opt := range opts {
		opt(emu)
	}
	if emu.rand == nil {
		emu.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return emu
}

// LoadROM copies the program into memory at 0x200 and restores the power on
// state around it. A rejected program leaves the machine untouched.
func (emu *EMU) LoadROM(rom []byte) error {
	var mem Memory
	if err := mem.Load(rom); err != nil {
		return err
	}
	emu.program = append(emu.program[:0], rom...)
	emu.Reset()
	return nil
}

// Reset restores the power on state and reloads the last program.
func (emu *EMU) Reset() {
	emu.memory = newMemory()
	copy(emu.memory[ProgramStart:], emu.program)
	emu.V = [16]uint8{}
	emu.I = 0
	emu.pc = ProgramStart
	emu.stack = Stack{}
	emu.timers = Timers{}
	emu.display = display.Buffer{}
	emu.mode = Running
	emu.waitReg = 0
}

// Fetch reads the opcode at pc without moving it.
func (emu *EMU) Fetch() (uint16, error) {
	return emu.memory.ReadWord(emu.pc)
}

// Step runs one fetch, decode and execute cycle.
func (emu *EMU) Step() error {
	if emu.mode == WaitingForKey {
		return emu.pollKey()
	}

	pc := emu.pc
	opcode, err := emu.Fetch()
	if err != nil {
		emu.trace(pc, Instruction{}, "", err)
		return emu.fault(pc, opcode, err)
	}

	in := Decode(opcode)
	op, ok := lookup(in)
	if !ok {
		emu.trace(pc, in, "", ErrUnimplementedInstruction)
		return emu.fault(pc, opcode, ErrUnimplementedInstruction)
	}

	next, err := op.exec(emu, in)
	if err == nil {
		err = emu.jump(next)
	}
	emu.trace(pc, in, op.name, err)
	if err != nil {
		return emu.fault(pc, opcode, err)
	}
	return nil
}

func (emu *EMU) pollKey() error {
	pc := emu.pc
	key, ok := emu.input.NextPress()
	if !ok {
		emu.trace(pc, Instruction{}, "WAIT", nil)
		return nil
	}
	if err := emu.jump(pc + 2); err != nil {
		emu.trace(pc, Instruction{}, "WAIT", err)
		return emu.fault(pc, 0, err)
	}
	emu.V[emu.waitReg] = key
	emu.mode = Running
	emu.trace(pc, Instruction{}, "WAIT", nil)
	return nil
}

func (emu *EMU) jump(addr uint16) error {
	if addr > maxPC {
		return fmt.Errorf("%w: pc 0x%04X out of range", ErrMemoryFault, addr)
	}
	emu.pc = addr
	return nil
}

func (emu *EMU) fault(pc, opcode uint16, err error) error {
	return &Fault{PC: pc, Opcode: opcode, Err: err}
}

// TickTimers advances the delay and sound timers by one 60Hz period.
func (emu *EMU) TickTimers() {
	emu.timers.Tick()
}

func (emu *EMU) DisplaySnapshot() display.Frame {
	return emu.display.Snapshot()
}

// DisplayDirty reports whether the framebuffer changed since the last call.
func (emu *EMU) DisplayDirty() bool {
	return emu.display.Dirty()
}

// SetKeyState updates one key of the built in keypad.
func (emu *EMU) SetKeyState(key uint8, pressed bool) {
	emu.keypad.SetKey(key, pressed)
}

// SetKeypad applies a full snapshot of the built in keypad.
func (emu *EMU) SetKeypad(state [KeyCount]bool) {
	emu.keypad.SetState(state)
}

func (emu *EMU) SoundTimerActive() bool {
	return emu.timers.Sound > 0
}

func (emu *EMU) Mode() Mode {
	return emu.mode
}

func (emu *EMU) PC() uint16 {
	return emu.pc
}

// State is a copy of the registers for diagnostics.
type State struct {
	PC      uint16
	I       uint16
	V       [16]uint8
	Stack   []uint16
	Delay   uint8
	Sound   uint8
	Mode    Mode
	WaitReg uint8
}

func (emu *EMU) State() State {
	return State{
		PC:      emu.pc,
		I:       emu.I,
		V:       emu.V,
		Stack:   emu.stack.Frames(),
		Delay:   emu.timers.Delay,
		Sound:   emu.timers.Sound,
		Mode:    emu.mode,
		WaitReg: emu.waitReg,
	}
}

func (s State) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PC=%03X I=%03X DT=%02X ST=%02X mode=%s\n", s.PC, s.I, s.Delay, s.Sound, s.Mode)
	for i, v := range s.V {
		fmt.Fprintf(&sb, "V%X=%02X", i, v)
		if i%8 == 7 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	fmt.Fprintf(&sb, "stack=%03X", s.Stack)
	return sb.String()
}
