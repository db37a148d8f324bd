package pantilt

import "fmt"

// TimerSlot is the record of one hardware timer. FrequencyHz and
// ResolutionBits are meaningful only when Initialized is set.
type TimerSlot struct {
	Initialized    bool
	FrequencyHz    int
	ResolutionBits int
}

type timerRegistry [TimerCount]TimerSlot

func validTimer(id int) bool {
	return id >= 0 && id < TimerCount
}

func (r *timerRegistry) initialized(id int) bool {
	return validTimer(id) && r[id].Initialized
}

// ConfigureTimer programs timer id at frequencyHz with the fixed duty
// resolution and marks the slot initialized. A configured slot is never
// reconfigured; DeinitTimer must run first.
func (c *Controller) ConfigureTimer(id, frequencyHz int) error {
	const op = "configure timer"
	if !validTimer(id) {
		return newError(op, InvalidTimerID, fmt.Sprintf("timer %d not in 0..%d", id, TimerCount-1))
	}
	if slot := c.timers[id]; slot.Initialized {
		return newError(op, TimerAlreadyInitialized,
			fmt.Sprintf("timer %d already running at %d Hz", id, slot.FrequencyHz))
	}
	if err := c.drv.ConfigureTimer(id, frequencyHz, DutyResolutionBits); err != nil {
		return driverError(op, err)
	}
	c.timers[id] = TimerSlot{
		Initialized:    true,
		FrequencyHz:    frequencyHz,
		ResolutionBits: DutyResolutionBits,
	}
	c.logf("timer %d configured at %d Hz", id, frequencyHz)
	return nil
}

// DeinitTimer resets the peripheral and clears the slot. It is safe to call
// on a slot that was never configured. The slot is cleared even when the
// driver reports an error.
func (c *Controller) DeinitTimer(id int) error {
	const op = "deinit timer"
	if !validTimer(id) {
		return newError(op, InvalidTimerID, fmt.Sprintf("timer %d not in 0..%d", id, TimerCount-1))
	}
	err := c.drv.ResetTimer(id)
	c.timers[id] = TimerSlot{}
	if err != nil {
		return driverError(op, err)
	}
	return nil
}

// Timer returns a copy of the slot record for id.
func (c *Controller) Timer(id int) (TimerSlot, error) {
	if !validTimer(id) {
		return TimerSlot{}, newError("timer", InvalidTimerID, fmt.Sprintf("timer %d not in 0..%d", id, TimerCount-1))
	}
	return c.timers[id], nil
}
