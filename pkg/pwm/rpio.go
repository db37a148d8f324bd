package pwm

import (
	"fmt"
	"log"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"

	"github.com/Seann-Moser/pantilt/pkg/config"
)

// rpioPin is the subset of rpio.Pin used here.
type rpioPin interface {
	Pwm()
	Input()
	Freq(freq int)
	DutyCycle(dutyLen, cycleLen uint32)
}

type rpioPinAdapter struct{ p rpio.Pin }

func (a rpioPinAdapter) Pwm()                               { a.p.Pwm() }
func (a rpioPinAdapter) Input()                             { a.p.Input() }
func (a rpioPinAdapter) Freq(freq int)                      { a.p.Freq(freq) }
func (a rpioPinAdapter) DutyCycle(dutyLen, cycleLen uint32) { a.p.DutyCycle(dutyLen, cycleLen) }

var (
	rpioOpen     = rpio.Open
	rpioClose    = rpio.Close
	rpioStartPwm = rpio.StartPwm
	rpioStopPwm  = rpio.StopPwm
	rpioPinFn    = func(n int) rpioPin { return rpioPinAdapter{rpio.Pin(n)} }
)

type rpioTimer struct {
	frequencyHz int
	bits        int
}

type rpioChannel struct {
	pin    rpioPin
	gpio   int
	cycle  uint32
	staged uint32
}

// RPi drives the Raspberry Pi hardware PWM block through /dev/gpiomem. The
// PWM clock plays the timer: its frequency is frequencyHz times the cycle
// length, so one period spans 1<<resolutionBits ticks.
type RPi struct {
	logger   *log.Logger
	timers   map[int]rpioTimer
	channels map[int]*rpioChannel
}

// NewRPi maps the GPIO registers. It needs a Raspberry Pi and access to
// /dev/gpiomem (or root).
func NewRPi(logger *log.Logger) (*RPi, error) {
	if err := rpioOpen(); err != nil {
		return nil, errors.Wrap(err, "rpio: open gpio (are you running on a Raspberry Pi?)")
	}
	return &RPi{
		logger:   logger,
		timers:   make(map[int]rpioTimer),
		channels: make(map[int]*rpioChannel),
	}, nil
}

func (r *RPi) ConfigureTimer(timer, frequencyHz, resolutionBits int) error {
	if frequencyHz <= 0 || resolutionBits <= 0 {
		return fmt.Errorf("rpio: bad timer %d config %d Hz / %d bits", timer, frequencyHz, resolutionBits)
	}
	r.timers[timer] = rpioTimer{frequencyHz: frequencyHz, bits: resolutionBits}
	rpioStartPwm()
	logf(r.logger, "rpio: timer %d at %d Hz, %d bit", timer, frequencyHz, resolutionBits)
	return nil
}

func (r *RPi) ConfigureChannel(channel, timer, gpioPin, duty int) error {
	t, ok := r.timers[timer]
	if !ok {
		return fmt.Errorf("rpio: timer %d not configured", timer)
	}
	if !config.HardwarePWMPin(gpioPin) {
		return fmt.Errorf("rpio: gpio %d has no hardware pwm", gpioPin)
	}
	for ch, c := range r.channels {
		if ch != channel && c.gpio == gpioPin {
			return fmt.Errorf("rpio: gpio %d already used by channel %d", gpioPin, ch)
		}
	}
	cycle := uint32(1) << uint(t.bits)
	pin := rpioPinFn(gpioPin)
	pin.Pwm()
	pin.Freq(t.frequencyHz * int(cycle))
	pin.DutyCycle(uint32(duty), cycle)
	r.channels[channel] = &rpioChannel{pin: pin, gpio: gpioPin, cycle: cycle, staged: uint32(duty)}
	logf(r.logger, "rpio: channel %d on gpio %d", channel, gpioPin)
	return nil
}

func (r *RPi) StageDuty(channel, duty int) error {
	c, ok := r.channels[channel]
	if !ok {
		return fmt.Errorf("rpio: channel %d not configured", channel)
	}
	if duty < 0 || uint32(duty) > c.cycle {
		return fmt.Errorf("rpio: duty %d outside 0..%d", duty, c.cycle)
	}
	c.staged = uint32(duty)
	return nil
}

func (r *RPi) CommitDuty(channel int) error {
	c, ok := r.channels[channel]
	if !ok {
		return fmt.Errorf("rpio: channel %d not configured", channel)
	}
	c.pin.DutyCycle(c.staged, c.cycle)
	return nil
}

func (r *RPi) StopChannel(channel int) error {
	c, ok := r.channels[channel]
	if !ok {
		return nil
	}
	c.pin.DutyCycle(0, c.cycle)
	c.pin.Input()
	delete(r.channels, channel)
	return nil
}

func (r *RPi) ResetTimer(timer int) error {
	delete(r.timers, timer)
	if len(r.timers) == 0 {
		rpioStopPwm()
	}
	return nil
}

func (r *RPi) Close() error {
	for ch := range r.channels {
		_ = r.StopChannel(ch)
	}
	rpioStopPwm()
	return errors.Wrap(rpioClose(), "rpio: close")
}
