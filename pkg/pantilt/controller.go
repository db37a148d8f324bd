package pantilt

import (
	"fmt"
	"log"

	"github.com/hashicorp/go-multierror"
)

// Controller owns the timer slots and both axis records of one pan/tilt
// assembly. It is not safe for concurrent use; callers that share it
// between goroutines must serialize access to the whole controller.
type Controller struct {
	drv    Driver
	logger *log.Logger

	timers     timerRegistry
	horizontal AxisState
	vertical   AxisState

	// timer the assembly was last initialized on, -1 when none.
	assemblyTimer int
}

// InitConfig wires one assembly: both axes share TimerID on two channels.
type InitConfig struct {
	TimerID           int
	FrequencyHz       int
	HorizontalChannel int
	VerticalChannel   int
	HorizontalGPIO    int
	VerticalGPIO      int
}

// Snapshot is a copy of every record the controller owns.
type Snapshot struct {
	Timers     [TimerCount]TimerSlot
	Horizontal AxisState
	Vertical   AxisState
}

// New returns a controller with every record uninitialized.
func New(drv Driver) *Controller {
	return &Controller{drv: drv, assemblyTimer: -1}
}

// SetLogger enables diagnostic logging. A nil logger disables it.
func (c *Controller) SetLogger(l *log.Logger) {
	c.logger = l
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// Init configures the timer, then the horizontal axis, then the vertical
// axis. If the timer cannot be configured neither axis is touched. Axis
// failures are independent: one failing does not undo the other or the
// timer, and all of them are returned together. An assembly owns a single
// timer: Init fails with TimerAlreadyInitialized until Deinit releases it.
func (c *Controller) Init(cfg InitConfig) error {
	if validTimer(c.assemblyTimer) {
		return newError("init", TimerAlreadyInitialized, fmt.Sprintf("assembly already running on timer %d", c.assemblyTimer))
	}
	if err := c.ConfigureTimer(cfg.TimerID, cfg.FrequencyHz); err != nil {
		return err
	}
	c.assemblyTimer = cfg.TimerID

	var result *multierror.Error
	if _, err := c.ActivateAxis(Horizontal, cfg.HorizontalChannel, cfg.TimerID, cfg.HorizontalGPIO); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := c.ActivateAxis(Vertical, cfg.VerticalChannel, cfg.TimerID, cfg.VerticalGPIO); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Deinit stops both channels, resets the assembly timer and returns every
// record to its zero state. The records are reset whatever the driver
// reports; the returned error only describes teardown failures.
func (c *Controller) Deinit() error {
	var result *multierror.Error
	for _, a := range []Axis{Horizontal, Vertical} {
		if !c.axis(a).Initialized {
			continue
		}
		if err := c.DeactivateAxis(a); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if validTimer(c.assemblyTimer) {
		if err := c.DeinitTimer(c.assemblyTimer); err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.horizontal = AxisState{}
	c.vertical = AxisState{}
	c.assemblyTimer = -1
	c.logf("pan/tilt released")
	return result.ErrorOrNil()
}

// SetHorizontalAngle moves the pan servo, clamping angle to
// [MinAngle, MaxAngle].
func (c *Controller) SetHorizontalAngle(angle int) error {
	return c.SetAngle(Horizontal, angle)
}

// SetVerticalAngle moves the tilt servo. Angles above VerticalMaxAngle are
// driven to MaxAngle.
func (c *Controller) SetVerticalAngle(angle int) error {
	return c.SetAngle(Vertical, angle)
}

// SetAngle clamps angle for the axis, converts it and stages then commits
// the duty. The record changes only once both driver steps succeed.
func (c *Controller) SetAngle(a Axis, angle int) error {
	op := "set " + a.String() + " angle"
	st := c.axis(a)
	if st == nil {
		return newError(op, InvalidAxis, "")
	}
	angle = ClampAngle(a, angle)
	if !st.Initialized {
		return newError(op, AxisNotInitialized, "")
	}

	duty := AngleToDuty(angle)
	if a == Vertical && (duty < MinDuty || duty > MaxDuty) {
		return newError(op, DutyOutOfRange, fmt.Sprintf("duty %d not in %d..%d", duty, MinDuty, MaxDuty))
	}

	if err := c.drv.StageDuty(st.ChannelID, duty); err != nil {
		return driverError(op, err)
	}
	if err := c.drv.CommitDuty(st.ChannelID); err != nil {
		return driverError(op, err)
	}
	st.AngleDeg = angle
	st.Duty = duty
	return nil
}

// Snapshot returns a copy of all records.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Timers:     c.timers,
		Horizontal: c.horizontal,
		Vertical:   c.vertical,
	}
}
