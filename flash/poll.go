package flash

// PollState is the outcome of watching the DQ6 toggle bit.
type PollState int

const (
	// PollBusy means consecutive status reads still differ.
	PollBusy PollState = iota

	// PollDone means the toggle bit settled.
	PollDone

	// PollTimedOut means the budget ran out before the bit settled.
	PollTimedOut
)

func (s PollState) String() string {
	switch s {
	case PollBusy:
		return "busy"
	case PollDone:
		return "done"
	case PollTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// probe performs one busy check: two consecutive status reads that
// agree mean the chip has left its embedded algorithm.
func (p *Programmer) probe() PollState {
	if p.bus.Read16(windowAddr(0)) == p.bus.Read16(windowAddr(0)) {
		return PollDone
	}
	return PollBusy
}

// waitToggle probes until the chip goes idle or the budget runs out.
// tick, if non-nil, runs between probes.
func (p *Programmer) waitToggle(budget int, tick func()) PollState {
	for i := 0; i < budget; i++ {
		if p.probe() == PollDone {
			return PollDone
		}
		if tick != nil {
			tick()
		}
	}
	return PollTimedOut
}
