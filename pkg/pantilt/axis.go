package pantilt

import "fmt"

// Axis selects one of the two servos.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// AxisState is the record of one servo. Duty lies in [MinDuty, MaxDuty]
// whenever Initialized is set.
type AxisState struct {
	Initialized bool
	TimerID     int
	ChannelID   int
	GPIOPin     int
	AngleDeg    int
	Duty        int
}

// axis returns the record for a, or nil for an unknown axis.
func (c *Controller) axis(a Axis) *AxisState {
	switch a {
	case Horizontal:
		return &c.horizontal
	case Vertical:
		return &c.vertical
	default:
		return nil
	}
}

// ActivateAxis configures channelID on timerID driving gpioPin and records
// the axis at its midpoint. When the timer has not been configured the call
// is a no-op and reports activated == false with a nil error.
func (c *Controller) ActivateAxis(a Axis, channelID, timerID, gpioPin int) (activated bool, err error) {
	op := "activate " + a.String()
	st := c.axis(a)
	if st == nil {
		return false, newError(op, InvalidAxis, "")
	}
	if channelID < 0 || channelID > MaxChannel {
		return false, newError(op, InvalidChannelID, fmt.Sprintf("channel %d not in 0..%d", channelID, MaxChannel))
	}
	if !validTimer(timerID) {
		return false, newError(op, InvalidTimerID, fmt.Sprintf("timer %d not in 0..%d", timerID, TimerCount-1))
	}
	if !c.timers.initialized(timerID) {
		c.logf("%s: timer %d not configured, skipping", op, timerID)
		return false, nil
	}
	if err := c.drv.ConfigureChannel(channelID, timerID, gpioPin, MiddleDuty); err != nil {
		return false, driverError(op, err)
	}
	*st = AxisState{
		Initialized: true,
		TimerID:     timerID,
		ChannelID:   channelID,
		GPIOPin:     gpioPin,
		AngleDeg:    (MaxAngle + MinAngle) / 2,
		Duty:        MiddleDuty,
	}
	c.logf("%s axis on channel %d (timer %d, gpio %d)", a, channelID, timerID, gpioPin)
	return true, nil
}

// DeactivateAxis stops the axis channel. The record is left as is; Deinit
// clears it together with the rest of the assembly.
func (c *Controller) DeactivateAxis(a Axis) error {
	op := "deactivate " + a.String()
	st := c.axis(a)
	if st == nil {
		return newError(op, InvalidAxis, "")
	}
	if err := c.drv.StopChannel(st.ChannelID); err != nil {
		return driverError(op, err)
	}
	return nil
}

// Axis returns a copy of the record for a. Unknown axes read as the zero
// record.
func (c *Controller) Axis(a Axis) AxisState {
	if st := c.axis(a); st != nil {
		return *st
	}
	return AxisState{}
}
