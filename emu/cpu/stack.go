package cpu

import "fmt"

const StackDepth = 16

// Stack holds subroutine return addresses.
type Stack struct {
	frames [StackDepth]uint16
	sp     int
}

func (s *Stack) Push(addr uint16) error {
	if s.sp == StackDepth {
		return fmt.Errorf("%w: call depth exceeds %d", ErrStackFault, StackDepth)
	}
	s.frames[s.sp] = addr
	s.sp++
	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, fmt.Errorf("%w: return with empty stack", ErrStackFault)
	}
	s.sp--
	return s.frames[s.sp], nil
}

func (s *Stack) Depth() int {
	return s.sp
}

// Frames returns the pushed addresses, oldest first.
func (s *Stack) Frames() []uint16 {
	out := make([]uint16, s.sp)
	copy(out, s.frames[:s.sp])
	return out
}
