package pantilt

import "github.com/warthog618/go-gpiocdev/device/rpi"

// DefaultInitConfig is the stock wiring: timer 0 at 50 Hz, pan on channel 0
// (GPIO17), tilt on channel 1 (GPIO16).
var DefaultInitConfig = InitConfig{
	TimerID:           0,
	FrequencyHz:       50,
	HorizontalChannel: 0,
	VerticalChannel:   1,
	HorizontalGPIO:    rpi.GPIO17,
	VerticalGPIO:      rpi.GPIO16,
}

// InitDefault initializes c with DefaultInitConfig, centers the pan axis and
// lowers the tilt axis to its minimum.
func InitDefault(c *Controller) error {
	if err := c.Init(DefaultInitConfig); err != nil {
		return err
	}
	if err := c.SetHorizontalAngle((MaxAngle + MinAngle) / 2); err != nil {
		return err
	}
	return c.SetVerticalAngle(MinAngle)
}
