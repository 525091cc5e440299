package cpu

import (
	"errors"
	"fmt"
)

var (
	ErrMemoryFault              = errors.New("memory fault")
	ErrStackFault               = errors.New("stack fault")
	ErrUnimplementedInstruction = errors.New("unimplemented instruction")
	ErrProgramTooLarge          = errors.New("program too large")
)

// Fault is returned by Step when an instruction cannot be carried out. The
// run is over once a Fault is seen, the host should stop stepping and report
// it.
type Fault struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v (pc 0x%03X, opcode 0x%04X)", f.Err, f.PC, f.Opcode)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
