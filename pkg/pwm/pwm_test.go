package pwm

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/Seann-Moser/pantilt/pkg/config"
	"github.com/Seann-Moser/pantilt/pkg/pantilt"
)

// Every backend must be usable as the controller's driver.
var (
	_ pantilt.Driver = (*Recorder)(nil)
	_ pantilt.Driver = (*RPi)(nil)
	_ pantilt.Driver = (*PCA9685)(nil)
	_ pantilt.Driver = (*Gobot)(nil)
	_ Backend        = (*Recorder)(nil)
	_ Backend        = (*RPi)(nil)
	_ Backend        = (*PCA9685)(nil)
	_ Backend        = (*Gobot)(nil)
)

func TestRecorder_StageIsInvisibleUntilCommit(t *testing.T) {
	r := NewRecorder()
	if err := r.ConfigureTimer(0, 50, 15); err != nil {
		t.Fatal(err)
	}
	if err := r.ConfigureChannel(1, 0, 16, pantilt.MiddleDuty); err != nil {
		t.Fatal(err)
	}
	if err := r.StageDuty(1, 3000); err != nil {
		t.Fatal(err)
	}
	ch, _ := r.Channel(1)
	if ch.Duty != pantilt.MiddleDuty || ch.Staged != 3000 {
		t.Errorf("after stage: %+v", ch)
	}
	if err := r.CommitDuty(1); err != nil {
		t.Fatal(err)
	}
	ch, _ = r.Channel(1)
	if ch.Duty != 3000 {
		t.Errorf("after commit: %+v", ch)
	}
}

func TestRecorder_RejectsUnconfigured(t *testing.T) {
	r := NewRecorder()
	if err := r.ConfigureChannel(0, 0, 17, 0); err == nil {
		t.Error("channel on unconfigured timer should fail")
	}
	if err := r.StageDuty(3, 100); err == nil {
		t.Error("stage on unconfigured channel should fail")
	}
	if err := r.CommitDuty(3); err == nil {
		t.Error("commit on unconfigured channel should fail")
	}
}

func TestRecorder_FailNextAndLogging(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder()
	r.SetLogger(log.New(&buf, "", 0))
	boom := errors.New("boom")
	r.FailNext("timer", boom)
	if err := r.ConfigureTimer(0, 50, 15); !errors.Is(err, boom) {
		t.Fatalf("first call = %v, want boom", err)
	}
	if _, ok := r.TimerFrequency(0); ok {
		t.Error("failed timer must not be recorded as configured")
	}
	if err := r.ConfigureTimer(0, 50, 15); err != nil {
		t.Fatalf("second call = %v", err)
	}
	if hz, _ := r.TimerFrequency(0); hz != 50 {
		t.Errorf("frequency = %d", hz)
	}
	if got := len(r.Calls()); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
	if !strings.Contains(buf.String(), "pwm timer") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestRecorder_WithController(t *testing.T) {
	r := NewRecorder()
	c := pantilt.New(r)
	if err := pantilt.InitDefault(c); err != nil {
		t.Fatalf("InitDefault: %v", err)
	}
	h, _ := r.Channel(0)
	v, _ := r.Channel(1)
	if h.Duty != pantilt.AngleToDuty(90) || v.Duty != pantilt.MinDuty {
		t.Errorf("committed duties h=%d v=%d", h.Duty, v.Duty)
	}
	if err := c.Deinit(); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Channel(0); ok {
		t.Error("channel 0 still running after Deinit")
	}
	if _, ok := r.TimerFrequency(0); ok {
		t.Error("timer 0 still configured after Deinit")
	}
}

func TestScaleDuty(t *testing.T) {
	cases := []struct {
		duty, bits, want int
	}{
		{pantilt.MinDuty, 15, 116},
		{pantilt.MaxDuty, 15, 459},
		{pantilt.MaxDutyValue, 15, 4095},
		{4095, 12, 4095},
		{255, 8, 4080},
		{100, 0, 0},
	}
	for _, tc := range cases {
		if got := scaleDuty(tc.duty, tc.bits); got != tc.want {
			t.Errorf("scaleDuty(%d, %d) = %d, want %d", tc.duty, tc.bits, got, tc.want)
		}
	}
}

type fakePCA struct {
	freqs       []int
	writes      map[int]int
	allOffCalls int
	err         error
}

func (f *fakePCA) setFrequency(hz int) error {
	f.freqs = append(f.freqs, hz)
	return f.err
}

func (f *fakePCA) setOff(channel, off int) error {
	f.writes[channel] = off
	return f.err
}

func (f *fakePCA) allOff() error {
	f.allOffCalls++
	return f.err
}

func TestPCABoard(t *testing.T) {
	w := &fakePCA{writes: make(map[int]int)}
	b := newPCABoard(w, nil, nil)
	if err := b.ConfigureTimer(0, 50, 15); err != nil {
		t.Fatal(err)
	}
	if err := b.ConfigureTimer(1, 60, 15); err == nil {
		t.Error("second frequency on a single-prescaler board should fail")
	}
	if err := b.ConfigureChannel(0, 0, 17, pantilt.MiddleDuty); err != nil {
		t.Fatal(err)
	}
	if w.writes[0] != pantilt.MiddleDuty>>3 {
		t.Errorf("initial write = %d", w.writes[0])
	}
	if err := b.StageDuty(0, pantilt.MaxDuty); err != nil {
		t.Fatal(err)
	}
	if w.writes[0] != pantilt.MiddleDuty>>3 {
		t.Error("stage must not write the register")
	}
	if err := b.CommitDuty(0); err != nil {
		t.Fatal(err)
	}
	if w.writes[0] != pantilt.MaxDuty>>3 {
		t.Errorf("committed = %d, want %d", w.writes[0], pantilt.MaxDuty>>3)
	}
	if err := b.StopChannel(0); err != nil {
		t.Fatal(err)
	}
	if err := b.CommitDuty(0); err == nil {
		t.Error("commit after stop should fail")
	}
	if err := b.ResetTimer(0); err != nil {
		t.Fatal(err)
	}
	if w.allOffCalls != 1 {
		t.Errorf("allOff calls = %d, want 1", w.allOffCalls)
	}
	if err := b.ConfigureChannel(0, 0, 17, 0); err == nil {
		t.Error("channel after timer reset should fail")
	}
}

func TestPCABoard_WrapsWriterErrors(t *testing.T) {
	boom := errors.New("i2c nack")
	w := &fakePCA{writes: make(map[int]int), err: boom}
	b := newPCABoard(w, nil, nil)
	err := b.ConfigureTimer(0, 50, 15)
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "set frequency") {
		t.Errorf("error = %v", err)
	}
}

type fakePin struct {
	pwm, input bool
	freq       int
	duty       []uint32
}

func (p *fakePin) Pwm()          { p.pwm = true }
func (p *fakePin) Input()        { p.input = true }
func (p *fakePin) Freq(freq int) { p.freq = freq }
func (p *fakePin) DutyCycle(dutyLen, cycleLen uint32) {
	p.duty = append(p.duty, dutyLen)
}

func withFakeRPi(t *testing.T) map[int]*fakePin {
	t.Helper()
	pins := make(map[int]*fakePin)
	oldOpen, oldClose, oldStart, oldStop, oldPin := rpioOpen, rpioClose, rpioStartPwm, rpioStopPwm, rpioPinFn
	rpioOpen = func() error { return nil }
	rpioClose = func() error { return nil }
	rpioStartPwm = func() {}
	rpioStopPwm = func() {}
	rpioPinFn = func(n int) rpioPin {
		p := &fakePin{}
		pins[n] = p
		return p
	}
	t.Cleanup(func() {
		rpioOpen, rpioClose, rpioStartPwm, rpioStopPwm, rpioPinFn = oldOpen, oldClose, oldStart, oldStop, oldPin
	})
	return pins
}

func TestRPi(t *testing.T) {
	pins := withFakeRPi(t)
	r, err := NewRPi(nil)
	if err != nil {
		t.Fatal(err)
	}
	c := pantilt.New(r)
	cfg := pantilt.InitConfig{TimerID: 0, FrequencyHz: 50, HorizontalChannel: 0, VerticalChannel: 1, HorizontalGPIO: 18, VerticalGPIO: 19}
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p := pins[18]
	if p == nil || !p.pwm || p.freq != 50*32768 {
		t.Fatalf("pin 18 = %+v", p)
	}
	if err := c.SetHorizontalAngle(180); err != nil {
		t.Fatal(err)
	}
	if last := p.duty[len(p.duty)-1]; last != pantilt.MaxDuty {
		t.Errorf("duty = %d, want %d", last, pantilt.MaxDuty)
	}
	if err := c.Deinit(); err != nil {
		t.Fatal(err)
	}
	if !p.input {
		t.Error("pin 18 not released")
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRPi_RejectsNonPWMPin(t *testing.T) {
	withFakeRPi(t)
	r, _ := NewRPi(nil)
	if err := r.ConfigureTimer(0, 50, 15); err != nil {
		t.Fatal(err)
	}
	if err := r.ConfigureChannel(0, 0, 17, 0); err == nil {
		t.Error("gpio 17 has no hardware pwm")
	}
	if err := r.ConfigureChannel(0, 0, 18, 0); err != nil {
		t.Fatal(err)
	}
	if err := r.ConfigureChannel(1, 0, 18, 0); err == nil {
		t.Error("gpio 18 is already used")
	}
	if err := r.StageDuty(0, 1<<16); err == nil {
		t.Error("duty above the cycle should fail")
	}
}

func TestRPi_OpenError(t *testing.T) {
	withFakeRPi(t)
	rpioOpen = func() error { return errors.New("no gpiomem") }
	if _, err := NewRPi(nil); err == nil || !strings.Contains(err.Error(), "no gpiomem") {
		t.Errorf("NewRPi = %v", err)
	}
}

func TestOpen(t *testing.T) {
	cfg := config.Default()
	b, err := Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open mock: %v", err)
	}
	if _, ok := b.(*Recorder); !ok {
		t.Errorf("mock backend = %T", b)
	}
	cfg.Backend = "serial"
	if _, err := Open(&cfg, nil); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestOutputEnable_NilIsNoop(t *testing.T) {
	oe, err := OpenOutputEnable("gpiochip0", -1)
	if err != nil || oe != nil {
		t.Fatalf("OpenOutputEnable(-1) = %v, %v", oe, err)
	}
	if oe.Enable() != nil || oe.Disable() != nil || oe.Close() != nil {
		t.Error("nil OutputEnable must be a no-op")
	}
}
