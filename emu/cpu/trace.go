package cpu

// StepInfo describes one Step, including steps that fault. Waiting steps
// carry the zero Instruction and the name WAIT, unknown opcodes an empty name.
type StepInfo struct {
	PC          uint16
	Instruction Instruction
	Name        string
	Mode        Mode
	Err         error
}

// Tracer observes the interpreter after every step.
type Tracer interface {
	Traced(info StepInfo)
}

// TracerFunc adapts a plain function to Tracer.
type TracerFunc func(info StepInfo)

func (f TracerFunc) Traced(info StepInfo) {
	f(info)
}

func (emu *EMU) trace(pc uint16, in Instruction, name string, err error) {
	if emu.tracer == nil {
		return
	}
	emu.tracer.Traced(StepInfo{
		PC:          pc,
		Instruction: in,
		Name:        name,
		Mode:        emu.mode,
		Err:         err,
	})
}
