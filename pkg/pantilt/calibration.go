package pantilt

import "time"

// Calibration for a 0.567ms..2.244ms servo at a 20ms period, expressed
// over a 15-bit duty register (0..32767).
const (
	DutyResolutionBits = 15
	MaxDutyValue       = 1<<DutyResolutionBits - 1

	MinDuty    = 928  // 0.56666ms / 20ms
	MaxDuty    = 3677 // 2.24444ms / 20ms
	MiddleDuty = 2239 // 1.36666ms / 20ms

	MinAngle = 0
	MaxAngle = 180
	// VerticalMaxAngle is the tilt mechanism's limit. Angles above it are
	// driven to MaxAngle.
	VerticalMaxAngle = MaxAngle - 30

	TimerCount = 4
	MaxChannel = 7
)

// PulseToDuty converts a pulse width at the given PWM period into a duty
// register value, truncating like the hardware does.
func PulseToDuty(pulse, period time.Duration) int {
	if period <= 0 {
		return 0
	}
	return int(float64(pulse) / float64(period) * float64(MaxDutyValue))
}

// AngleToDuty maps an angle in [MinAngle, MaxAngle] to a duty value.
// Integer division truncates toward zero; callers clamp first.
func AngleToDuty(angle int) int {
	return angle*(MaxDuty-MinDuty)/MaxAngle + MinDuty
}

// ClampAngle applies the per-axis range rule.
func ClampAngle(axis Axis, angle int) int {
	if angle < MinAngle {
		return MinAngle
	}
	if axis == Vertical {
		if angle > VerticalMaxAngle {
			return MaxAngle
		}
		return angle
	}
	if angle > MaxAngle {
		return MaxAngle
	}
	return angle
}
