package pantilt

// Driver is the PWM peripheral the controller programs. Implementations
// perform the register-level work; the controller decides what to write and
// when it is safe to.
//
// A duty change becomes visible only after StageDuty followed by CommitDuty
// on the same channel.
type Driver interface {
	ConfigureTimer(timer, frequencyHz, resolutionBits int) error
	ConfigureChannel(channel, timer, gpioPin, duty int) error
	StageDuty(channel, duty int) error
	CommitDuty(channel int) error
	StopChannel(channel int) error
	ResetTimer(timer int) error
}
