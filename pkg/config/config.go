package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Seann-Moser/pantilt/pkg/pantilt"
)

// Backend names accepted in Config.Backend.
const (
	BackendMock    = "mock"
	BackendRPi     = "rpio"
	BackendPCA9685 = "pca9685"
	BackendGobot   = "gobot"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "pantilt.yaml"

// rpiPWMPins lists the BCM pins wired to the BCM283x PWM block.
var rpiPWMPins = map[int]bool{
	12: true,
	13: true,
	18: true,
	19: true,
}

// HardwarePWMPin reports whether the BCM pin can drive the rpio backend.
func HardwarePWMPin(gpio int) bool {
	return rpiPWMPins[gpio]
}

type AxisConfig struct {
	Channel int `yaml:"channel"`
	GPIO    int `yaml:"gpio"` // BCM numbering; the rpio backend needs 12, 13, 18 or 19
}

// HomeConfig is the position applied at start and on reset.
type HomeConfig struct {
	Pan  int `yaml:"pan"`
	Tilt int `yaml:"tilt"`
}

// PCA9685Config is used by the pca9685 and gobot backends.
type PCA9685Config struct {
	Bus       string `yaml:"bus"`        // periph bus name, "" = first available
	BusNumber int    `yaml:"bus_number"` // gobot bus number
	Address   int    `yaml:"address"`
	OEChip    string `yaml:"oe_chip"` // gpiochip holding the OE line
	OELine    int    `yaml:"oe_line"` // OE line offset, < 0 = not wired
}

type Config struct {
	Backend     string        `yaml:"backend"`
	Verbose     bool          `yaml:"verbose"`
	Timer       int           `yaml:"timer"`
	FrequencyHz int           `yaml:"frequency_hz"`
	Horizontal  AxisConfig    `yaml:"horizontal"`
	Vertical    AxisConfig    `yaml:"vertical"`
	Home        HomeConfig    `yaml:"home"`
	PCA9685     PCA9685Config `yaml:"pca9685"`
}

// Default returns the stock wiring used by pantilt.InitDefault.
func Default() Config {
	d := pantilt.DefaultInitConfig
	return Config{
		Backend:     BackendMock,
		Timer:       d.TimerID,
		FrequencyHz: d.FrequencyHz,
		Horizontal:  AxisConfig{Channel: d.HorizontalChannel, GPIO: d.HorizontalGPIO},
		Vertical:    AxisConfig{Channel: d.VerticalChannel, GPIO: d.VerticalGPIO},
		Home:        HomeConfig{Pan: (pantilt.MinAngle + pantilt.MaxAngle) / 2, Tilt: pantilt.MinAngle},
		PCA9685: PCA9685Config{
			BusNumber: 1,
			Address:   0x40,
			OEChip:    "gpiochip0",
			OELine:    -1,
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges the controller would otherwise reject at runtime.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMock, BackendRPi, BackendPCA9685, BackendGobot:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Timer < 0 || c.Timer >= pantilt.TimerCount {
		return fmt.Errorf("timer must be between 0 and %d, got %d", pantilt.TimerCount-1, c.Timer)
	}
	if c.FrequencyHz <= 0 {
		return fmt.Errorf("frequency_hz must be > 0, got %d", c.FrequencyHz)
	}
	for name, ch := range map[string]int{"horizontal": c.Horizontal.Channel, "vertical": c.Vertical.Channel} {
		if ch < 0 || ch > pantilt.MaxChannel {
			return fmt.Errorf("%s.channel must be between 0 and %d, got %d", name, pantilt.MaxChannel, ch)
		}
	}
	if c.Backend == BackendRPi {
		for name, gpio := range map[string]int{"horizontal": c.Horizontal.GPIO, "vertical": c.Vertical.GPIO} {
			if !HardwarePWMPin(gpio) {
				return fmt.Errorf("%s.gpio %d has no hardware pwm; the rpio backend needs 12, 13, 18 or 19", name, gpio)
			}
		}
	}
	if c.PCA9685.Address <= 0 || c.PCA9685.Address > 0x7f {
		return fmt.Errorf("pca9685.address must be between 0x01 and 0x7f, got %#x", c.PCA9685.Address)
	}
	if c.PCA9685.OELine >= 0 && c.PCA9685.OEChip == "" {
		return fmt.Errorf("pca9685.oe_chip is required when oe_line is set")
	}
	if c.Horizontal.Channel == c.Vertical.Channel {
		return fmt.Errorf("horizontal and vertical must use distinct channels, both are %d", c.Horizontal.Channel)
	}
	if c.Home.Pan < pantilt.MinAngle || c.Home.Pan > pantilt.MaxAngle {
		return fmt.Errorf("home.pan must be between %d and %d, got %d", pantilt.MinAngle, pantilt.MaxAngle, c.Home.Pan)
	}
	if c.Home.Tilt < pantilt.MinAngle || c.Home.Tilt > pantilt.MaxAngle {
		return fmt.Errorf("home.tilt must be between %d and %d, got %d", pantilt.MinAngle, pantilt.MaxAngle, c.Home.Tilt)
	}
	return nil
}

// InitConfig converts the wiring section into the controller's form.
func (c *Config) InitConfig() pantilt.InitConfig {
	return pantilt.InitConfig{
		TimerID:           c.Timer,
		FrequencyHz:       c.FrequencyHz,
		HorizontalChannel: c.Horizontal.Channel,
		VerticalChannel:   c.Vertical.Channel,
		HorizontalGPIO:    c.Horizontal.GPIO,
		VerticalGPIO:      c.Vertical.GPIO,
	}
}
