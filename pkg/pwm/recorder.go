package pwm

import (
	"fmt"
	"log"
	"sync"
)

// Call is one driver operation seen by a Recorder.
type Call struct {
	Op      string
	Timer   int
	Channel int
	GPIO    int
	Value   int
}

// ChannelState is what a Recorder knows about a configured channel. Duty is
// the committed value; Staged is pending until the next commit.
type ChannelState struct {
	Timer  int
	GPIO   int
	Staged int
	Duty   int
}

// Recorder is an in-memory backend. It keeps the staged/committed split of
// real hardware so the two-step write can be observed, and records every
// call in order.
type Recorder struct {
	mu       sync.Mutex
	logger   *log.Logger
	calls    []Call
	timers   map[int]int
	channels map[int]*ChannelState
	fail     map[string]error
	closed   bool
}

func NewRecorder() *Recorder {
	return &Recorder{
		timers:   make(map[int]int),
		channels: make(map[int]*ChannelState),
		fail:     make(map[string]error),
	}
}

// SetLogger logs every call. A nil logger disables it.
func (r *Recorder) SetLogger(l *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// FailNext makes the next call to op return err. op is one of "timer",
// "channel", "stage", "commit", "stop", "reset".
func (r *Recorder) FailNext(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] = err
}

func (r *Recorder) record(c Call) error {
	r.calls = append(r.calls, c)
	logf(r.logger, "pwm %s timer=%d channel=%d gpio=%d value=%d", c.Op, c.Timer, c.Channel, c.GPIO, c.Value)
	if err, ok := r.fail[c.Op]; ok {
		delete(r.fail, c.Op)
		return err
	}
	if r.closed {
		return fmt.Errorf("pwm: recorder closed")
	}
	return nil
}

func (r *Recorder) ConfigureTimer(timer, frequencyHz, resolutionBits int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: "timer", Timer: timer, Value: frequencyHz}); err != nil {
		return err
	}
	r.timers[timer] = frequencyHz
	return nil
}

func (r *Recorder) ConfigureChannel(channel, timer, gpioPin, duty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: "channel", Timer: timer, Channel: channel, GPIO: gpioPin, Value: duty}); err != nil {
		return err
	}
	if _, ok := r.timers[timer]; !ok {
		return fmt.Errorf("pwm: timer %d not configured", timer)
	}
	r.channels[channel] = &ChannelState{Timer: timer, GPIO: gpioPin, Staged: duty, Duty: duty}
	return nil
}

func (r *Recorder) StageDuty(channel, duty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: "stage", Channel: channel, Value: duty}); err != nil {
		return err
	}
	ch, ok := r.channels[channel]
	if !ok {
		return fmt.Errorf("pwm: channel %d not configured", channel)
	}
	ch.Staged = duty
	return nil
}

func (r *Recorder) CommitDuty(channel int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: "commit", Channel: channel}); err != nil {
		return err
	}
	ch, ok := r.channels[channel]
	if !ok {
		return fmt.Errorf("pwm: channel %d not configured", channel)
	}
	ch.Duty = ch.Staged
	return nil
}

func (r *Recorder) StopChannel(channel int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: "stop", Channel: channel}); err != nil {
		return err
	}
	delete(r.channels, channel)
	return nil
}

func (r *Recorder) ResetTimer(timer int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: "reset", Timer: timer}); err != nil {
		return err
	}
	delete(r.timers, timer)
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.channels = make(map[int]*ChannelState)
	r.timers = make(map[int]int)
	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Channel returns the state of a configured channel.
func (r *Recorder) Channel(channel int) (ChannelState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[channel]
	if !ok {
		return ChannelState{}, false
	}
	return *ch, true
}

// TimerFrequency returns the frequency a timer was configured with.
func (r *Recorder) TimerFrequency(timer int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hz, ok := r.timers[timer]
	return hz, ok
}
