package pantilt

import "github.com/pkg/errors"

// Code identifies why an operation was rejected. It implements error so it
// can be used directly as a sentinel with errors.Is.
type Code string

func (c Code) Error() string { return string(c) }

const (
	InvalidTimerID          Code = "invalid_timer_id"
	InvalidChannelID        Code = "invalid_channel_id"
	TimerAlreadyInitialized Code = "timer_already_initialized"
	AxisNotInitialized      Code = "axis_not_initialized"
	DutyOutOfRange          Code = "duty_out_of_range"
	InvalidAxis             Code = "invalid_axis"
	DriverFailure           Code = "driver_failure"
)

// Error carries a Code together with the operation that produced it and,
// for DriverFailure, the backend error.
type Error struct {
	Code Code
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Op + ": " + string(e.Code)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is this error's Code.
func (e *Error) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.Code
}

// CodeOf extracts the Code from err. It returns the empty Code for nil and
// DriverFailure for errors that carry no code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return DriverFailure
}

func newError(op string, code Code, msg string) error {
	return &Error{Code: code, Op: op, Msg: msg}
}

func driverError(op string, err error) error {
	return &Error{Code: DriverFailure, Op: op, Err: err}
}
