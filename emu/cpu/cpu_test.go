package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// newTestEMU loads the opcodes as a program and returns a seeded EMU.
func newTestEMU(t *testing.T, opcodes ...uint16) *EMU {
	t.Helper()
	rom := make([]byte, 0, len(opcodes)*2)
	for _, op := range opcodes {
		rom = append(rom, byte(op>>8), byte(op))
	}
	emu := NewEMU(WithSeed(1))
	assert.NoError(t, emu.LoadROM(rom))
	return emu
}

func stepN(t *testing.T, emu *EMU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		assert.NoError(t, emu.Step())
	}
}

func TestNewEMU(t *testing.T) {
	emu := NewEMU()
	assert.Equal(t, uint16(ProgramStart), emu.PC())
	assert.Equal(t, Running, emu.Mode())
	assert.Equal(t, FontSet[:], emu.memory[FontBase : FontBase+len(FontSet)][:])
	assert.Equal(t, 0, emu.stack.Depth())
	assert.False(t, emu.SoundTimerActive())
}

func TestLoadROM(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"max size", MaxProgramSize, false},
		{"too large", MaxProgramSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := NewEMU()
			err := emu.LoadROM(make([]byte, tt.size))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrProgramTooLarge))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadROMKeepsFont(t *testing.T) {
	emu := NewEMU()
	rom := []byte{0xA2, 0x0A, 0x60, 0x01}
	assert.NoError(t, emu.LoadROM(rom))
	assert.Equal(t, rom, emu.memory[ProgramStart : ProgramStart+len(rom)][:])
	assert.Equal(t, FontSet[:], emu.memory[FontBase : FontBase+len(FontSet)][:])
}

func TestFetchDoesNotAdvance(t *testing.T) {
	emu := newTestEMU(t, 0x1234)
	op, err := emu.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), op)
	assert.Equal(t, uint16(ProgramStart), emu.PC())
}

func TestAddByteWraps(t *testing.T) {
	emu := newTestEMU(t, 0x63FF, 0x6F07, 0x7301)
	stepN(t, emu, 3)
	assert.Equal(t, uint8(0x00), emu.V[3])
	assert.Equal(t, uint8(0x07), emu.V[0xF])
}

func TestArithmeticFlags(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy uint8
		wantVX uint8
		wantVF uint8
	}{
		{"add overflow", 0x8124, 0xFF, 0x01, 0x00, 1},
		{"add no overflow", 0x8124, 0x01, 0x01, 0x02, 0},
		{"sub borrow", 0x8125, 0x01, 0x02, 0xFF, 0},
		{"sub no borrow", 0x8125, 0x05, 0x02, 0x03, 1},
		{"sub equal", 0x8125, 0x05, 0x05, 0x00, 0},
		{"subn no borrow", 0x8127, 0x02, 0x05, 0x03, 1},
		{"subn borrow", 0x8127, 0x05, 0x02, 0xFD, 0},
		{"or", 0x8121, 0xF0, 0x0F, 0xFF, 0xAA},
		{"and", 0x8122, 0xF0, 0x3C, 0x30, 0xAA},
		{"xor", 0x8123, 0xFF, 0x0F, 0xF0, 0xAA},
		{"move", 0x8120, 0x11, 0x22, 0x22, 0xAA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newTestEMU(t, tt.opcode)
			emu.V[1] = tt.vx
			emu.V[2] = tt.vy
			emu.V[0xF] = 0xAA
			assert.NoError(t, emu.Step())
			assert.Equal(t, tt.wantVX, emu.V[1])
			assert.Equal(t, tt.wantVF, emu.V[0xF])
			assert.Equal(t, uint16(ProgramStart+2), emu.PC())
		})
	}
}

func TestFlagWrittenLastWhenVFIsDestination(t *testing.T) {
	emu := newTestEMU(t, 0x8F14)
	emu.V[0xF] = 0xFF
	emu.V[1] = 0x02
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint8(1), emu.V[0xF])
}

func TestShiftQuirk(t *testing.T) {
	tests := []struct {
		name   string
		quirk  ShiftQuirk
		opcode uint16
		wantVX uint8
		wantVF uint8
	}{
		{"shr from vy", ShiftFromVY, 0x8126, 0x40, 1},
		{"shl from vy", ShiftFromVY, 0x812E, 0x02, 1},
		{"shr in place", ShiftInPlace, 0x8126, 0x08, 0},
		{"shl in place", ShiftInPlace, 0x812E, 0x20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newTestEMU(t, tt.opcode)
			emu.quirks.Shift = tt.quirk
			emu.V[1] = 0x10
			emu.V[2] = 0x81
			assert.NoError(t, emu.Step())
			assert.Equal(t, tt.wantVX, emu.V[1])
			assert.Equal(t, tt.wantVF, emu.V[0xF])
		})
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy uint8
		skip   bool
	}{
		{"se byte equal", 0x3142, 0x42, 0, true},
		{"se byte differ", 0x3142, 0x41, 0, false},
		{"sne byte equal", 0x4142, 0x42, 0, false},
		{"sne byte differ", 0x4142, 0x41, 0, true},
		{"se reg equal", 0x5120, 0x07, 0x07, true},
		{"se reg differ", 0x5120, 0x07, 0x08, false},
		{"sne reg equal", 0x9120, 0x07, 0x07, false},
		{"sne reg differ", 0x9120, 0x07, 0x08, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newTestEMU(t, tt.opcode)
			emu.V[1] = tt.vx
			emu.V[2] = tt.vy
			assert.NoError(t, emu.Step())
			want := uint16(ProgramStart + 2)
			if tt.skip {
				want = ProgramStart + 4
			}
			assert.Equal(t, want, emu.PC())
		})
	}
}

func TestJumps(t *testing.T) {
	emu := newTestEMU(t, 0x1300)
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint16(0x300), emu.PC())

	emu = newTestEMU(t, 0xB300)
	emu.V[0] = 0x10
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint16(0x310), emu.PC())
}

func TestJumpWithOffsetOutOfRange(t *testing.T) {
	emu := newTestEMU(t, 0xBFFF)
	emu.V[0] = 0x10
	err := emu.Step()
	assert.True(t, errors.Is(err, ErrMemoryFault))
	assert.Equal(t, uint16(ProgramStart), emu.PC())
}

func TestCallReturn(t *testing.T) {
	// 200: CALL 206, 202: LD V1 01, 204: JP 204, 206: RET
	emu := newTestEMU(t, 0x2206, 0x6101, 0x1204, 0x00EE)
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint16(0x206), emu.PC())
	assert.Equal(t, 1, emu.stack.Depth())

	assert.NoError(t, emu.Step())
	assert.Equal(t, uint16(0x202), emu.PC())
	assert.Equal(t, 0, emu.stack.Depth())
}

func TestStackFaults(t *testing.T) {
	emu := newTestEMU(t, 0x00EE)
	err := emu.Step()
	assert.True(t, errors.Is(err, ErrStackFault))

	// 200: CALL 200 recurses until the stack is full
	emu = newTestEMU(t, 0x2200)
	stepN(t, emu, StackDepth)
	assert.Equal(t, StackDepth, emu.stack.Depth())
	err = emu.Step()
	assert.True(t, errors.Is(err, ErrStackFault))
	assert.Equal(t, StackDepth, emu.stack.Depth())
}

func TestFaultCarriesState(t *testing.T) {
	emu := newTestEMU(t, 0x6001, 0x8128)
	assert.NoError(t, emu.Step())
	err := emu.Step()

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x202), fault.PC)
	assert.Equal(t, uint16(0x8128), fault.Opcode)
	assert.True(t, errors.Is(err, ErrUnimplementedInstruction))
}

func TestUnimplemented(t *testing.T) {
	for _, op := range []uint16{0x8008, 0x800F, 0xE000, 0xE09F, 0xF000, 0xF0FF} {
		emu := newTestEMU(t, op)
		assert.True(t, errors.Is(emu.Step(), ErrUnimplementedInstruction))
	}
}

func TestMachineRoutineIsSkipped(t *testing.T) {
	emu := newTestEMU(t, 0x0123)
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint16(ProgramStart+2), emu.PC())
}

func TestPCStaysInRange(t *testing.T) {
	// JP FFE lands on the last fetchable opcode, the SYS there would step
	// past the end of memory
	emu := newTestEMU(t, 0x1FFE)
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint16(0xFFE), emu.PC())
	assert.True(t, errors.Is(emu.Step(), ErrMemoryFault))
	assert.Equal(t, uint16(0xFFE), emu.PC())

	emu = newTestEMU(t)
	emu.pc = 0xFFC
	emu.memory[0xFFC] = 0x30
	emu.memory[0xFFD] = 0x00
	assert.True(t, errors.Is(emu.Step(), ErrMemoryFault))

	emu = newTestEMU(t, 0x2FFF)
	assert.True(t, errors.Is(emu.Step(), ErrMemoryFault))
	assert.Equal(t, 0, emu.stack.Depth())
}

func TestIndexOperations(t *testing.T) {
	emu := newTestEMU(t, 0xA123, 0x60FF, 0xF01E, 0x6007, 0xF029)
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint16(0x123), emu.I)
	stepN(t, emu, 2)
	assert.Equal(t, uint16(0x222), emu.I)
	stepN(t, emu, 2)
	assert.Equal(t, uint16(FontBase+5*7), emu.I)
}

func TestBCD(t *testing.T) {
	emu := newTestEMU(t, 0x63FE, 0xA300, 0xF333)
	stepN(t, emu, 3)
	assert.Equal(t, []byte{2, 5, 4}, emu.memory[0x300:0x303][:])
}

func TestStoreLoad(t *testing.T) {
	emu := newTestEMU(t, 0xA300, 0xF255, 0xA400, 0xF165)
	emu.V[0], emu.V[1], emu.V[2], emu.V[3] = 1, 2, 3, 4
	emu.memory[0x400] = 9
	emu.memory[0x401] = 8
	emu.memory[0x402] = 7

	stepN(t, emu, 2)
	assert.Equal(t, []byte{1, 2, 3, 0}, emu.memory[0x300:0x304][:])
	assert.Equal(t, uint16(0x300), emu.I)

	stepN(t, emu, 2)
	assert.Equal(t, uint8(9), emu.V[0])
	assert.Equal(t, uint8(8), emu.V[1])
	assert.Equal(t, uint8(3), emu.V[2])
}

func TestStoreAdvancesIndexQuirk(t *testing.T) {
	emu := newTestEMU(t, 0xA300, 0xF255)
	emu.quirks.StoreAdvancesIndex = true
	stepN(t, emu, 2)
	assert.Equal(t, uint16(0x303), emu.I)
}

func TestStoreOutOfRange(t *testing.T) {
	emu := newTestEMU(t, 0xAFFE, 0xF255)
	assert.NoError(t, emu.Step())
	assert.True(t, errors.Is(emu.Step(), ErrMemoryFault))
}

func TestSelfModifyingCode(t *testing.T) {
	// 200: LD I 206, 202: LD V0 61, 204: LD [I] V0, 206: 0000 becomes LD V1 00
	emu := newTestEMU(t, 0xA206, 0x6061, 0xF055, 0x0000)
	stepN(t, emu, 4)
	assert.Equal(t, uint16(0x208), emu.PC())
	assert.Equal(t, uint8(0x00), emu.V[1])
	op, err := emu.memory.ReadWord(0x206)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x6100), op)
}

func TestRandomIsSeeded(t *testing.T) {
	a := newTestEMU(t, 0xC1FF, 0xC20F)
	b := newTestEMU(t, 0xC1FF, 0xC20F)
	stepN(t, a, 2)
	stepN(t, b, 2)
	assert.Equal(t, a.V[1], b.V[1])
	assert.Equal(t, a.V[2], b.V[2])
	assert.True(t, a.V[2] <= 0x0F)
}

type fixedRandom int

func (r fixedRandom) Intn(n int) int {
	return int(r) % n
}

func TestRandomMasksWithByte(t *testing.T) {
	emu := NewEMU(WithRandom(fixedRandom(0xAB)))
	assert.NoError(t, emu.LoadROM([]byte{0xC1, 0x0F}))
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint8(0x0B), emu.V[1])
}

func TestTimers(t *testing.T) {
	emu := newTestEMU(t, 0x6002, 0xF015, 0xF018, 0xF107)
	stepN(t, emu, 3)
	assert.True(t, emu.SoundTimerActive())

	emu.TickTimers()
	emu.TickTimers()
	assert.Equal(t, uint8(0), emu.timers.Delay)
	assert.False(t, emu.SoundTimerActive())

	emu.TickTimers()
	assert.Equal(t, uint8(0), emu.timers.Delay)
	assert.Equal(t, uint8(0), emu.timers.Sound)

	emu.V[1] = 0xAA
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint8(0), emu.V[1])
}

func TestTimersIgnoreSteps(t *testing.T) {
	emu := newTestEMU(t, 0x6005, 0xF015, 0x1204)
	stepN(t, emu, 10)
	assert.Equal(t, uint8(5), emu.timers.Delay)
}

func TestSkipOnKey(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		pressed bool
		skip    bool
	}{
		{"skp pressed", 0xE19E, true, true},
		{"skp released", 0xE19E, false, false},
		{"sknp pressed", 0xE1A1, true, false},
		{"sknp released", 0xE1A1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newTestEMU(t, tt.opcode)
			emu.V[1] = 0xA
			emu.SetKeyState(0xA, tt.pressed)
			assert.NoError(t, emu.Step())
			want := uint16(ProgramStart + 2)
			if tt.skip {
				want = ProgramStart + 4
			}
			assert.Equal(t, want, emu.PC())
		})
	}
}

func TestWaitForKey(t *testing.T) {
	emu := newTestEMU(t, 0xF30A, 0x1202)
	assert.NoError(t, emu.Step())
	assert.Equal(t, WaitingForKey, emu.Mode())
	assert.Equal(t, uint16(ProgramStart), emu.PC())

	stepN(t, emu, 5)
	assert.Equal(t, WaitingForKey, emu.Mode())
	assert.Equal(t, uint16(ProgramStart), emu.PC())

	emu.SetKeyState(5, true)
	assert.NoError(t, emu.Step())
	assert.Equal(t, Running, emu.Mode())
	assert.Equal(t, uint16(ProgramStart+2), emu.PC())
	assert.Equal(t, uint8(5), emu.V[3])
}

func TestWaitForKeyNeedsNewPress(t *testing.T) {
	emu := newTestEMU(t, 0xF30A)
	emu.SetKeyState(2, true)
	assert.NoError(t, emu.Step())
	assert.NoError(t, emu.Step())
	assert.Equal(t, WaitingForKey, emu.Mode())

	// held key does not count, release and press again
	emu.SetKeyState(2, false)
	assert.NoError(t, emu.Step())
	assert.Equal(t, WaitingForKey, emu.Mode())
	emu.SetKeyState(2, true)
	assert.NoError(t, emu.Step())
	assert.Equal(t, uint8(2), emu.V[3])
}

func TestWaitForKeyKeepsTimersRunning(t *testing.T) {
	emu := newTestEMU(t, 0x6003, 0xF015, 0xF00A)
	stepN(t, emu, 3)
	emu.TickTimers()
	assert.Equal(t, uint8(2), emu.timers.Delay)
}

func TestTracer(t *testing.T) {
	var infos []StepInfo
	emu := NewEMU(WithTracer(TracerFunc(func(info StepInfo) {
		infos = append(infos, info)
	})))
	assert.NoError(t, emu.LoadROM([]byte{0x61, 0x02, 0xF1, 0x0A}))
	stepN(t, emu, 3)

	assert.Equal(t, 3, len(infos))
	assert.Equal(t, "LD", infos[0].Name)
	assert.Equal(t, uint16(0x6102), infos[0].Instruction.Raw)
	assert.Equal(t, WaitingForKey, infos[1].Mode)
	assert.Equal(t, "WAIT", infos[2].Name)
}

func TestTracerSeesUnimplemented(t *testing.T) {
	var infos []StepInfo
	emu := NewEMU(WithTracer(TracerFunc(func(info StepInfo) {
		infos = append(infos, info)
	})))
	assert.NoError(t, emu.LoadROM([]byte{0x80, 0x08}))

	assert.True(t, errors.Is(emu.Step(), ErrUnimplementedInstruction))
	assert.Equal(t, 1, len(infos))
	assert.Equal(t, uint16(ProgramStart), infos[0].PC)
	assert.Equal(t, uint16(0x8008), infos[0].Instruction.Raw)
	assert.Equal(t, "", infos[0].Name)
	assert.True(t, errors.Is(infos[0].Err, ErrUnimplementedInstruction))
}

func TestWaitForKeyAtEndOfMemory(t *testing.T) {
	// JP FFE, with LD V3, K in the last two bytes of memory
	rom := make([]byte, MaxProgramSize)
	rom[0], rom[1] = 0x1F, 0xFE
	rom[len(rom)-2], rom[len(rom)-1] = 0xF3, 0x0A
	emu := NewEMU()
	assert.NoError(t, emu.LoadROM(rom))
	stepN(t, emu, 2)
	assert.Equal(t, WaitingForKey, emu.Mode())
	assert.Equal(t, uint16(0xFFE), emu.PC())

	emu.SetKeyState(7, true)
	assert.True(t, errors.Is(emu.Step(), ErrMemoryFault))
	assert.Equal(t, WaitingForKey, emu.Mode())
	assert.Equal(t, uint16(0xFFE), emu.PC())
	assert.Equal(t, uint8(0), emu.V[3])
}

func TestLoadROMRestartsMachine(t *testing.T) {
	// CALL 204, SYS, LD V3, K
	emu := newTestEMU(t, 0x2204, 0x0000, 0xF30A)
	stepN(t, emu, 2)
	assert.Equal(t, WaitingForKey, emu.Mode())
	assert.Equal(t, 1, emu.stack.Depth())

	assert.NoError(t, emu.LoadROM([]byte{0x61, 0x05}))
	assert.Equal(t, Running, emu.Mode())
	assert.Equal(t, 0, emu.stack.Depth())
	assert.Equal(t, uint16(ProgramStart), emu.PC())

	assert.NoError(t, emu.Step())
	assert.Equal(t, uint8(5), emu.V[1])
	assert.Equal(t, uint16(ProgramStart+2), emu.PC())
}

func TestLoadROMRejectedKeepsState(t *testing.T) {
	emu := newTestEMU(t, 0x6105)
	stepN(t, emu, 1)

	err := emu.LoadROM(make([]byte, MaxProgramSize+1))
	assert.True(t, errors.Is(err, ErrProgramTooLarge))
	assert.Equal(t, uint8(5), emu.V[1])
	assert.Equal(t, uint16(ProgramStart+2), emu.PC())
	op, err := emu.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0000), op)
}

func TestReset(t *testing.T) {
	emu := newTestEMU(t, 0x6105, 0x00E0)
	stepN(t, emu, 1)
	emu.Reset()
	assert.Equal(t, uint8(0), emu.V[1])
	assert.Equal(t, uint16(ProgramStart), emu.PC())
	op, err := emu.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x6105), op)
}

func TestStateString(t *testing.T) {
	emu := newTestEMU(t, 0x2204, 0x0000, 0x6A0B)
	stepN(t, emu, 2)
	s := emu.State()
	assert.Equal(t, []uint16{0x202}, s.Stack)
	assert.Equal(t, uint8(0x0B), s.V[0xA])
	assert.True(t, strings.Contains(s.String(), "VA=0B"))
}

func TestDrawCollision(t *testing.T) {
	// LD I 208, DRW V0 V1 1, DRW V0 V1 1, JP 206, sprite FF
	emu := newTestEMU(t, 0xA208, 0xD011, 0xD011, 0x1206, 0xFF00)
	stepN(t, emu, 2)
	assert.Equal(t, uint8(0), emu.V[0xF])
	assert.Equal(t, 8, emu.DisplaySnapshot().Lit())

	assert.NoError(t, emu.Step())
	assert.Equal(t, uint8(1), emu.V[0xF])
	assert.Equal(t, 0, emu.DisplaySnapshot().Lit())
}

func TestDrawFont(t *testing.T) {
	// glyph 0 at (0,0) then CLS
	emu := newTestEMU(t, 0x6000, 0xF029, 0xD005, 0x00E0)
	stepN(t, emu, 3)
	frame := emu.DisplaySnapshot()
	assert.Equal(t, 14, frame.Lit())
	assert.True(t, frame[0][0] && frame[0][3] && !frame[1][1])
	assert.True(t, emu.DisplayDirty())

	assert.NoError(t, emu.Step())
	assert.Equal(t, 0, emu.DisplaySnapshot().Lit())
}

func TestDrawClipsSpriteRead(t *testing.T) {
	// sprite rows below the screen are neither drawn nor read
	emu := newTestEMU(t, 0x611F, 0xAFFF, 0xD01F)
	emu.memory[0xFFF] = 0x80
	stepN(t, emu, 3)
	assert.True(t, emu.DisplaySnapshot()[31][0])
	assert.Equal(t, uint8(0), emu.V[0xF])
}
