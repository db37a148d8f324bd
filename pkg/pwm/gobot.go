package pwm

import (
	"log"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/platforms/raspi"

	"github.com/Seann-Moser/pantilt/pkg/config"
)

// Gobot drives a PCA9685 board through gobot's raspi adaptor.
type Gobot struct {
	*pcaBoard
	adaptor *raspi.Adaptor
	servos  *i2c.PCA9685Driver
}

type gobotWriter struct {
	servos *i2c.PCA9685Driver
	// channels written since start, for allOff
	used map[int]bool
}

func (g *gobotWriter) setFrequency(hz int) error {
	return g.servos.SetPWMFreq(float32(hz))
}

func (g *gobotWriter) setOff(channel, off int) error {
	g.used[channel] = true
	return g.servos.SetPWM(channel, 0, uint16(off))
}

func (g *gobotWriter) allOff() error {
	var result *multierror.Error
	for ch := range g.used {
		if err := g.servos.SetPWM(ch, 0, 0); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// NewGobot starts the PCA9685 driver on cfg.BusNumber at cfg.Address.
func NewGobot(cfg config.PCA9685Config, logger *log.Logger) (*Gobot, error) {
	r := raspi.NewAdaptor()
	if err := r.Connect(); err != nil {
		return nil, errors.Wrap(err, "gobot: connect raspi adaptor")
	}
	servos := i2c.NewPCA9685Driver(r,
		i2c.WithBus(cfg.BusNumber),
		i2c.WithAddress(cfg.Address),
	)
	if err := servos.Start(); err != nil {
		_ = r.Finalize()
		return nil, errors.Wrap(err, "gobot: start pca9685 driver")
	}
	oe, err := OpenOutputEnable(cfg.OEChip, cfg.OELine)
	if err != nil {
		_ = servos.Halt()
		_ = r.Finalize()
		return nil, err
	}
	logf(logger, "gobot: pca9685 on bus %d address %#x", cfg.BusNumber, cfg.Address)
	w := &gobotWriter{servos: servos, used: make(map[int]bool)}
	return &Gobot{
		pcaBoard: newPCABoard(w, oe, logger),
		adaptor:  r,
		servos:   servos,
	}, nil
}

func (g *Gobot) Close() error {
	var result *multierror.Error
	if err := g.pcaBoard.close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := g.servos.Halt(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "gobot: halt pca9685"))
	}
	if err := g.adaptor.Finalize(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "gobot: finalize adaptor"))
	}
	return result.ErrorOrNil()
}
