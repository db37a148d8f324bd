package pwm

import (
	"fmt"
	"log"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
	"periph.io/x/host/v3"

	"github.com/Seann-Moser/pantilt/pkg/config"
)

// pca9685Bits is the PCA9685 register resolution.
const pca9685Bits = 12

// scaleDuty converts a duty at resolution bits to the 12-bit PCA9685 range.
func scaleDuty(duty, bits int) int {
	if bits <= 0 {
		return 0
	}
	if bits >= pca9685Bits {
		return duty >> (bits - pca9685Bits)
	}
	return duty << (pca9685Bits - bits)
}

// pcaWriter is the register access both PCA9685 libraries provide.
type pcaWriter interface {
	setFrequency(hz int) error
	setOff(channel, off int) error
	allOff() error
}

// pcaBoard maps the timer/channel model onto a PCA9685: the chip has one
// prescaler, so every configured timer must share one frequency. The GPIO
// pin of a channel is ignored; the board output is the channel.
type pcaBoard struct {
	w      pcaWriter
	oe     *OutputEnable
	logger *log.Logger

	bits     int
	timers   map[int]int
	channels map[int]bool
	staged   map[int]int
}

func newPCABoard(w pcaWriter, oe *OutputEnable, logger *log.Logger) *pcaBoard {
	return &pcaBoard{
		w:        w,
		oe:       oe,
		logger:   logger,
		timers:   make(map[int]int),
		channels: make(map[int]bool),
		staged:   make(map[int]int),
	}
}

func (b *pcaBoard) ConfigureTimer(timer, frequencyHz, resolutionBits int) error {
	for id, hz := range b.timers {
		if id != timer && hz != frequencyHz {
			return fmt.Errorf("pca9685: timer %d runs at %d Hz, cannot run timer %d at %d Hz", id, hz, timer, frequencyHz)
		}
	}
	if err := b.w.setFrequency(frequencyHz); err != nil {
		return errors.Wrapf(err, "pca9685: set frequency %d Hz", frequencyHz)
	}
	b.timers[timer] = frequencyHz
	b.bits = resolutionBits
	logf(b.logger, "pca9685: timer %d at %d Hz", timer, frequencyHz)
	return nil
}

func (b *pcaBoard) ConfigureChannel(channel, timer, gpioPin, duty int) error {
	if _, ok := b.timers[timer]; !ok {
		return fmt.Errorf("pca9685: timer %d not configured", timer)
	}
	if err := b.w.setOff(channel, scaleDuty(duty, b.bits)); err != nil {
		return errors.Wrapf(err, "pca9685: configure channel %d", channel)
	}
	if err := b.oe.Enable(); err != nil {
		return err
	}
	b.channels[channel] = true
	b.staged[channel] = duty
	return nil
}

func (b *pcaBoard) StageDuty(channel, duty int) error {
	if !b.channels[channel] {
		return fmt.Errorf("pca9685: channel %d not configured", channel)
	}
	b.staged[channel] = duty
	return nil
}

func (b *pcaBoard) CommitDuty(channel int) error {
	if !b.channels[channel] {
		return fmt.Errorf("pca9685: channel %d not configured", channel)
	}
	off := scaleDuty(b.staged[channel], b.bits)
	return errors.Wrapf(b.w.setOff(channel, off), "pca9685: commit channel %d", channel)
}

func (b *pcaBoard) StopChannel(channel int) error {
	delete(b.channels, channel)
	delete(b.staged, channel)
	return errors.Wrapf(b.w.setOff(channel, 0), "pca9685: stop channel %d", channel)
}

func (b *pcaBoard) ResetTimer(timer int) error {
	delete(b.timers, timer)
	if len(b.timers) > 0 {
		return nil
	}
	var result *multierror.Error
	if err := b.w.allOff(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "pca9685: all off"))
	}
	if err := b.oe.Disable(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (b *pcaBoard) close() error {
	var result *multierror.Error
	if err := b.w.allOff(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "pca9685: all off"))
	}
	if err := b.oe.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// PCA9685 drives a PCA9685 board through periph.io.
type PCA9685 struct {
	*pcaBoard
	bus i2c.BusCloser
}

type periphWriter struct {
	dev *pca9685.Dev
}

func (p periphWriter) setFrequency(hz int) error {
	return p.dev.SetPwmFreq(physic.Frequency(hz) * physic.Hertz)
}

func (p periphWriter) setOff(channel, off int) error {
	return p.dev.SetPwm(channel, 0, gpio.Duty(off))
}

func (p periphWriter) allOff() error {
	return p.dev.SetAllPwm(0, 0)
}

// NewPCA9685 opens the I2C bus named in cfg (the first one when empty) and
// the optional output-enable line.
func NewPCA9685(cfg config.PCA9685Config, logger *log.Logger) (*PCA9685, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "pca9685: init periph host")
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, errors.Wrapf(err, "pca9685: open i2c bus %q", cfg.Bus)
	}
	dev, err := pca9685.NewI2C(bus, uint16(cfg.Address))
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrapf(err, "pca9685: open device at %#x", cfg.Address)
	}
	oe, err := OpenOutputEnable(cfg.OEChip, cfg.OELine)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	logf(logger, "pca9685: %s address %#x", bus, cfg.Address)
	return &PCA9685{
		pcaBoard: newPCABoard(periphWriter{dev: dev}, oe, logger),
		bus:      bus,
	}, nil
}

func (p *PCA9685) Close() error {
	var result *multierror.Error
	if err := p.pcaBoard.close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := p.bus.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "pca9685: close bus"))
	}
	return result.ErrorOrNil()
}
