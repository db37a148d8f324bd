package pwm

import (
	"fmt"
	"log"

	"github.com/Seann-Moser/pantilt/pkg/config"
)

// Backend is a PWM peripheral the pan/tilt controller can program, plus
// the release of whatever host resources it holds.
type Backend interface {
	ConfigureTimer(timer, frequencyHz, resolutionBits int) error
	ConfigureChannel(channel, timer, gpioPin, duty int) error
	StageDuty(channel, duty int) error
	CommitDuty(channel int) error
	StopChannel(channel int) error
	ResetTimer(timer int) error
	Close() error
}

// Open returns the backend named by cfg.Backend. logger may be nil.
func Open(cfg *config.Config, logger *log.Logger) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMock, "":
		r := NewRecorder()
		if cfg.Verbose {
			r.SetLogger(logger)
		}
		return r, nil
	case config.BackendRPi:
		return NewRPi(logger)
	case config.BackendPCA9685:
		return NewPCA9685(cfg.PCA9685, logger)
	case config.BackendGobot:
		return NewGobot(cfg.PCA9685, logger)
	default:
		return nil, fmt.Errorf("unknown pwm backend %q", cfg.Backend)
	}
}

func logf(l *log.Logger, format string, args ...interface{}) {
	if l != nil {
		l.Printf(format, args...)
	}
}
