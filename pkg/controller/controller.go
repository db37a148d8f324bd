package controller

import (
	"log"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/Seann-Moser/pantilt/pkg/config"
	"github.com/Seann-Moser/pantilt/pkg/pantilt"
	"github.com/Seann-Moser/pantilt/pkg/pwm"
)

// Controller owns one PWM backend and the pan/tilt state built on it. All
// methods are safe for concurrent use; they serialize on one lock because
// the peripheral itself is a single serialized resource.
type Controller struct {
	mu      sync.Mutex
	cfg     config.Config
	logger  *log.Logger
	backend pwm.Backend
	core    *pantilt.Controller
	started bool
}

// OpenFunc opens the backend for a config. It is swapped in tests.
type OpenFunc func(cfg *config.Config, logger *log.Logger) (pwm.Backend, error)

// New opens the configured backend. Nothing is programmed until Start.
func New(cfg config.Config, logger *log.Logger) (*Controller, error) {
	return NewWithOpener(cfg, logger, pwm.Open)
}

// NewWithOpener is New with a custom backend opener.
func NewWithOpener(cfg config.Config, logger *log.Logger, open OpenFunc) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	backend, err := open(&cfg, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s backend", cfg.Backend)
	}
	core := pantilt.New(backend)
	if cfg.Verbose {
		core.SetLogger(logger)
	}
	return &Controller{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		core:    core,
	}, nil
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// Start initializes the assembly and moves it to the home position.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.core.Init(c.cfg.InitConfig()); err != nil {
		return errors.Wrap(err, "init pan/tilt")
	}
	c.started = true
	c.logf("pan/tilt ready on timer %d at %d Hz (%s backend)", c.cfg.Timer, c.cfg.FrequencyHz, c.cfg.Backend)
	return c.setXY(c.cfg.Home.Pan, c.cfg.Home.Tilt)
}

// SetXY moves pan then tilt. Both are attempted; errors are combined.
func (c *Controller) SetXY(pan, tilt int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setXY(pan, tilt)
}

func (c *Controller) setXY(pan, tilt int) error {
	var result *multierror.Error
	if err := c.core.SetHorizontalAngle(pan); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.core.SetVerticalAngle(tilt); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	h, v := c.core.Axis(pantilt.Horizontal), c.core.Axis(pantilt.Vertical)
	c.logf("pan %d° (duty %d) tilt %d° (duty %d)", h.AngleDeg, h.Duty, v.AngleDeg, v.Duty)
	return nil
}

// SetPan moves the horizontal axis only.
func (c *Controller) SetPan(angle int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.core.SetHorizontalAngle(angle)
}

// SetTilt moves the vertical axis only.
func (c *Controller) SetTilt(angle int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.core.SetVerticalAngle(angle)
}

// GetXY returns the last applied pan and tilt angles.
func (c *Controller) GetXY() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.core.Axis(pantilt.Horizontal).AngleDeg, c.core.Axis(pantilt.Vertical).AngleDeg
}

// Snapshot returns a copy of the pan/tilt records.
func (c *Controller) Snapshot() pantilt.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.core.Snapshot()
}

// Reset moves the assembly back to the home position.
func (c *Controller) Reset() error {
	return c.SetXY(c.cfg.Home.Pan, c.cfg.Home.Tilt)
}

// Close returns to home, tears the assembly down and releases the backend.
// Teardown is best effort; every failure is reported.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result *multierror.Error
	if c.started {
		if err := c.setXY(c.cfg.Home.Pan, c.cfg.Home.Tilt); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := c.core.Deinit(); err != nil {
		result = multierror.Append(result, err)
	}
	c.started = false
	if err := c.backend.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "close backend"))
	}
	c.logf("pan/tilt closed")
	return result.ErrorOrNil()
}
