package pwm

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// OutputEnable drives the active-low OE pin of a PCA9685. A nil
// *OutputEnable is valid and does nothing, for boards with OE tied low.
type OutputEnable struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// OpenOutputEnable requests offset on chip as an output held high (outputs
// disabled). A negative offset returns nil.
func OpenOutputEnable(chip string, offset int) (*OutputEnable, error) {
	if offset < 0 {
		return nil, nil
	}
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, errors.Wrapf(err, "output enable: open %s", chip)
	}
	l, err := c.RequestLine(offset, gpiocdev.AsOutput(1), gpiocdev.WithConsumer("pantilt-oe"))
	if err != nil {
		_ = c.Close()
		return nil, errors.Wrapf(err, "output enable: request line %d on %s", offset, chip)
	}
	return &OutputEnable{chip: c, line: l}, nil
}

// Enable turns the board outputs on.
func (o *OutputEnable) Enable() error {
	if o == nil {
		return nil
	}
	return errors.Wrap(o.line.SetValue(0), "output enable: set low")
}

// Disable turns the board outputs off.
func (o *OutputEnable) Disable() error {
	if o == nil {
		return nil
	}
	return errors.Wrap(o.line.SetValue(1), "output enable: set high")
}

// Close disables the outputs and releases the line.
func (o *OutputEnable) Close() error {
	if o == nil {
		return nil
	}
	var result *multierror.Error
	if err := o.Disable(); err != nil {
		result = multierror.Append(result, err)
	}
	_ = o.line.Reconfigure(gpiocdev.AsInput)
	if err := o.line.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := o.chip.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
