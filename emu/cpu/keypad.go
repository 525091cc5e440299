package cpu

const KeyCount = 16

// InputProbe is the view of the hex keypad the interpreter needs. It is
// owned by the host.
type InputProbe interface {
	IsPressed(key uint8) bool
	// NextPress returns a key that went from released to pressed since the
	// previous call, and forgets all recorded presses.
	NextPress() (uint8, bool)
}

// Keypad is the default InputProbe, fed with key state snapshots through
// SetKey.
type Keypad struct {
	state [KeyCount]bool
	edges uint16
}

func (k *Keypad) SetKey(key uint8, pressed bool) {
	if key >= KeyCount {
		return
	}
	if pressed && !k.state[key] {
		k.edges |= 1 << key
	}
	k.state[key] = pressed
}

// SetState applies a full snapshot of the keypad.
func (k *Keypad) SetState(state [KeyCount]bool) {
	for key, pressed := range state {
		k.SetKey(uint8(key), pressed)
	}
}

func (k *Keypad) IsPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	return k.state[key]
}

// NextPress reports the lowest key pressed since the last call.
func (k *Keypad) NextPress() (uint8, bool) {
	if k.edges == 0 {
		return 0, false
	}
	var key uint8
	for k.edges&(1<<key) == 0 {
		key++
	}
	k.edges = 0
	return key, true
}

// State returns the current key snapshot.
func (k *Keypad) State() [KeyCount]bool {
	return k.state
}
