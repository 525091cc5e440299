package cpu

// Timers are the two 60Hz down counters.
type Timers struct {
	Delay uint8
	Sound uint8
}

// Tick decrements both counters by one, stopping at zero.
func (t *Timers) Tick() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}
