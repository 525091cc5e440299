// Package trace logs every interpreter step.
package trace

import (
	"fmt"

	"github.com/beanboi7/chyp-8/emu/cpu"
	"github.com/beanboi7/chyp-8/emu/disasm"
	"github.com/retroenv/retrogolib/log"
)

// Logger is a cpu.Tracer writing one debug line per step. Steps spent
// waiting for a key are only logged once per wait.
type Logger struct {
	logger  *log.Logger
	waiting bool
}

func New(logger *log.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Traced(info cpu.StepInfo) {
	if info.Name == "WAIT" {
		if l.waiting && info.Mode == cpu.WaitingForKey {
			return
		}
		l.waiting = info.Mode == cpu.WaitingForKey
		l.logger.Debug("Key wait",
			log.String("pc", fmt.Sprintf("0x%03X", info.PC)),
			log.String("mode", info.Mode.String()))
		return
	}
	l.waiting = false

	text, _ := disasm.Format(info.Instruction.Raw)
	if info.Err != nil {
		l.logger.Error("Step failed", info.Err,
			log.String("pc", fmt.Sprintf("0x%03X", info.PC)),
			log.String("opcode", fmt.Sprintf("0x%04X", info.Instruction.Raw)),
			log.String("instruction", text))
		return
	}
	l.logger.Debug("Step",
		log.String("pc", fmt.Sprintf("0x%03X", info.PC)),
		log.String("opcode", fmt.Sprintf("0x%04X", info.Instruction.Raw)),
		log.String("instruction", text))
}
