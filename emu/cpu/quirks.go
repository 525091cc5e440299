package cpu

import "fmt"

// ShiftQuirk selects the source register of 8XY6 and 8XYE.
type ShiftQuirk int

const (
	// ShiftFromVY shifts VY and stores the result in VX.
	ShiftFromVY ShiftQuirk = iota
	// ShiftInPlace shifts VX and ignores VY.
	ShiftInPlace
)

func (q ShiftQuirk) String() string {
	switch q {
	case ShiftFromVY:
		return "vy"
	case ShiftInPlace:
		return "vx"
	}
	return fmt.Sprintf("ShiftQuirk(%d)", int(q))
}

func ParseShiftQuirk(s string) (ShiftQuirk, error) {
	switch s {
	case "", "vy":
		return ShiftFromVY, nil
	case "vx":
		return ShiftInPlace, nil
	}
	return 0, fmt.Errorf("unknown shift quirk %q, expected vy or vx", s)
}

// Quirks collects the behaviours that differ between interpreters.
type Quirks struct {
	Shift ShiftQuirk
	// StoreAdvancesIndex leaves I pointing past the last register moved by
	// FX55 and FX65.
	StoreAdvancesIndex bool
}
